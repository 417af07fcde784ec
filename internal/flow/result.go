// File: internal/flow/result.go
package flow

// Outcome is the terminal state of one flow execution.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeAborted   Outcome = "aborted"
)

// Result is produced exactly once per flow execution and reported to the
// caller; it is never persisted.
type Result struct {
	Flow    Name
	Outcome Outcome
	// Detail is the human-readable diagnostic, e.g. which password in a
	// wordlist unlocked the wallet.
	Detail string
	// Findings lists flow-specific observations (leaking routes, recovered
	// credentials) worth reporting alongside the outcome.
	Findings []string
	// Err is the propagated cause for failed and aborted outcomes.
	Err error
}

func succeeded(detail string) Result {
	return Result{Outcome: OutcomeSucceeded, Detail: detail}
}

func failed(detail string, err error) Result {
	return Result{Outcome: OutcomeFailed, Detail: detail, Err: err}
}
