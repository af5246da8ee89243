package render_context

import (
	"errors"
	"fmt"
)

// ErrExitAfterInfo is returned by Init when option validation produced
// informational output (adapter listing) and the host should exit successfully
// without a running context.
var ErrExitAfterInfo = errors.New("exit after informational output")

// InitError reports that context initialization failed. Everything created
// before the failing stage has already been released.
type InitError struct {
	// Stage names the initialization step that failed.
	Stage string
	// Err is the underlying failure.
	Err error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("context init failed at %s: %v", e.Stage, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }
