// File: internal/session/errors.go
package session

import (
	"errors"
	"fmt"
)

// ErrExtensionNotFound is returned when no extension payload could be located
// and none was supplied explicitly.
var ErrExtensionNotFound = errors.New("browser extension was not found; pass its path explicitly")

// ErrOverwriteDeclined is returned when the destination already holds an
// extension copy and the user declined to overwrite it.
var ErrOverwriteDeclined = errors.New("destination already exists and overwrite was declined")

// ResolutionError signals that a usable session could not be assembled.
// It is fatal and raised before any browser launch.
type ResolutionError struct {
	Reason string
	Err    error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("session resolution failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("session resolution failed: %s", e.Reason)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// IOError wraps a filesystem failure during session provisioning.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("session io error: cannot %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
