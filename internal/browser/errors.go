// File: internal/browser/errors.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// TimeoutError reports a primitive whose element never reached the expected
// state within its timeout.
type TimeoutError struct {
	Action   string
	Selector string
	Timeout  time.Duration
	Err      error
}

func (e *TimeoutError) Error() string {
	if e.Selector != "" {
		return fmt.Sprintf("action %q on %q timed out after %s", e.Action, e.Selector, e.Timeout)
	}
	return fmt.Sprintf("action %q timed out after %s", e.Action, e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// wrapTimeout converts a deadline hit into a TimeoutError and passes every
// other failure through untouched.
func wrapTimeout(action, selector string, timeout time.Duration, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Action: action, Selector: selector, Timeout: timeout, Err: err}
	}
	return err
}
