package swapchain

import "fmt"

// CreateError reports that the presentation surface could not be created at
// context init. It is fatal: the whole context fails to start.
type CreateError struct {
	// Err is the underlying platform failure.
	Err error
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("couldn't create swapchain: %v", e.Err)
}

func (e *CreateError) Unwrap() error { return e.Err }

// ResizeError reports that the platform resize call failed. It is fatal at the
// point of resize: the context stays non-renderable until the host resolves it.
type ResizeError struct {
	// Err is the underlying platform failure.
	Err error
}

func (e *ResizeError) Error() string {
	return fmt.Sprintf("couldn't resize swapchain: %v", e.Err)
}

func (e *ResizeError) Unwrap() error { return e.Err }

// AcquireError reports that the backbuffer could not be acquired (e.g. device
// lost). The caller should treat the frame as unrenderable and stop frame start.
type AcquireError struct {
	// Err is the underlying platform failure.
	Err error
}

func (e *AcquireError) Error() string {
	return fmt.Sprintf("couldn't get swapchain image: %v", e.Err)
}

func (e *AcquireError) Unwrap() error { return e.Err }
