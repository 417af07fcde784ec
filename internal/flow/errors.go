// File: internal/flow/errors.go
package flow

import (
	"fmt"
	"strings"
)

// UIState is the last observed coarse state of the extension UI. Composite
// actions attach it to their errors so a failed flow reports where the UI
// actually ended up instead of a bare selector timeout.
type UIState string

const (
	StateUnknown    UIState = "unknown"
	StateOnboarding UIState = "onboarding" // wallet not created yet
	StateLocked     UIState = "locked"
	StateUnlocked   UIState = "unlocked"
	StateErrorShown UIState = "error-shown"
)

// CompositeError reports a composite action that failed partway. The Action
// Context is never left mid-step: the error carries the last known UI state
// rather than any notion of partial success.
type CompositeError struct {
	Step  string
	State UIState
	Err   error
}

func (e *CompositeError) Error() string {
	return fmt.Sprintf("step %q failed (ui state: %s): %v", e.Step, e.State, e.Err)
}

func (e *CompositeError) Unwrap() error { return e.Err }

// UnknownFlowError is the input-validation failure for a flow name that is not
// in the catalog. It is surfaced before any browser launch.
type UnknownFlowError struct {
	Name  string
	Known []string
}

func (e *UnknownFlowError) Error() string {
	return fmt.Sprintf("unknown flow %q, expected one of: %s", e.Name, strings.Join(e.Known, ", "))
}
