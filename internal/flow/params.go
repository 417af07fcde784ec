// File: internal/flow/params.go
package flow

import (
	"fmt"
	"strings"
)

// LockState is the target state for the access_control flow.
type LockState string

const (
	Locked   LockState = "locked"
	Unlocked LockState = "unlocked"
)

// Params carries one invocation's flow parameters. The polymorphic "value"
// argument is resolved into exactly one tagged field at construction time, so
// flows never see an untyped value. Read-only for the duration of the run.
type Params struct {
	Flow Name

	// Password is the extension setup/unlock password shared by most flows.
	Password string

	// Exactly one of the following is set, depending on Flow.
	Mnemonic          []string  // existing
	CandidatePassword string    // unlock (possibly wrong on purpose)
	WordlistPath      string    // brute_force_unlock
	Target            LockState // access_control
}

// NewParams validates the polymorphic value argument against the selected flow
// and builds the tagged parameter set. password is the configured session
// password; value is the flow-dependent extra argument.
func NewParams(flow Name, value, password string) (Params, error) {
	if _, err := lookup(flow); err != nil {
		return Params{}, err
	}

	p := Params{Flow: flow, Password: password}
	value = strings.TrimSpace(value)

	switch flow {
	case FlowExisting:
		if value == "" {
			return Params{}, fmt.Errorf("flow %q requires a mnemonic as its value", flow)
		}
		p.Mnemonic = strings.Fields(value)

	case FlowUnlock:
		// Optional: an explicitly wrong password is a legitimate test input.
		p.CandidatePassword = value
		if p.CandidatePassword == "" {
			p.CandidatePassword = password
		}

	case FlowBruteForceUnlock:
		if value == "" {
			return Params{}, fmt.Errorf("flow %q requires a wordlist file path as its value", flow)
		}
		p.WordlistPath = value

	case FlowAccessControl:
		switch LockState(strings.ToLower(value)) {
		case Locked:
			p.Target = Locked
		case Unlocked:
			p.Target = Unlocked
		default:
			return Params{}, fmt.Errorf("flow %q requires %q or %q as its value, got %q",
				flow, Locked, Unlocked, value)
		}

	default:
		if value != "" {
			return Params{}, fmt.Errorf("flow %q takes no value, got %q", flow, value)
		}
	}

	return p, nil
}
