// File: internal/flow/catalog.go

// Package flow is the flow-execution engine: it composes browser action
// primitives into composite steps and named end-to-end test flows against a
// stateful extension UI, and dispatches one selected flow per invocation.
package flow

import "context"

// Name identifies a flow in the catalog.
type Name string

const (
	FlowOpen             Name = "open"
	FlowCreate           Name = "create"
	FlowExisting         Name = "existing"
	FlowUnlock           Name = "unlock"
	FlowBruteForceUnlock Name = "brute_force_unlock"
	FlowIdleLock         Name = "idle_lock"
	FlowAccessControl    Name = "access_control"
)

// runFunc is the body of one flow. It runs strictly sequentially against the
// Runtime's Action Context and produces exactly one Result.
type runFunc func(ctx context.Context, rt *Runtime) Result

// Definition describes one catalog entry, including the meaning of the
// polymorphic value argument for this flow.
type Definition struct {
	Name      Name
	Summary   string
	ValueHint string
	run       runFunc
}

// catalog lists every selectable flow in presentation order.
var catalog = []Definition{
	{
		Name:    FlowOpen,
		Summary: "Open the extension window and verify it renders.",
		run:     runOpen,
	},
	{
		Name:    FlowCreate,
		Summary: "Create a new wallet through the onboarding screens.",
		run:     runCreate,
	},
	{
		Name:      FlowExisting,
		Summary:   "Import an existing wallet from a recovery phrase.",
		ValueHint: "mnemonic, e.g. \"w1 w2 ... w12\"",
		run:       runExisting,
	},
	{
		Name:      FlowUnlock,
		Summary:   "Unlock a created wallet with a password.",
		ValueHint: "password to try (defaults to the configured one; a wrong one tests the error path)",
		run:       runUnlock,
	},
	{
		Name:      FlowBruteForceUnlock,
		Summary:   "Try every wordlist candidate against the lock screen, in file order.",
		ValueHint: "wordlist file path, e.g. wordlist.txt",
		run:       runBruteForceUnlock,
	},
	{
		Name:    FlowIdleLock,
		Summary: "Verify the wallet auto-locks after the configured idle threshold.",
		run:     runIdleLock,
	},
	{
		Name:      FlowAccessControl,
		Summary:   "Drive the wallet to a lock state and sweep internal routes for leaks.",
		ValueHint: "target state: locked | unlocked",
		run:       runAccessControl,
	},
}

// Definitions returns the catalog in presentation order.
func Definitions() []Definition {
	out := make([]Definition, len(catalog))
	copy(out, catalog)
	return out
}

// Names returns every selectable flow name.
func Names() []string {
	names := make([]string, len(catalog))
	for i, def := range catalog {
		names[i] = string(def.Name)
	}
	return names
}

// lookup resolves a flow name against the catalog.
func lookup(name Name) (runFunc, error) {
	for _, def := range catalog {
		if def.Name == name {
			return def.run, nil
		}
	}
	return nil, &UnknownFlowError{Name: string(name), Known: Names()}
}
