package common

import (
	"fmt"
	"log"
	"strings"
)

// ValidationResult is the outcome of validating a PresentOptions value.
// The "list adapters" selector is a distinct variant rather than an error,
// since it is a successful run that should exit after printing information.
type ValidationResult int

const (
	// ValidationAccept means the options are valid and the context may start.
	ValidationAccept ValidationResult = iota
	// ValidationExit means the options requested informational output (adapter
	// listing) and the host should exit successfully without starting a context.
	ValidationExit
	// ValidationReject means an option value is invalid.
	ValidationReject
)

// AdapterLister enumerates the display adapters available to the presentation
// engine. Adapter enumeration itself is a host collaborator; validation only
// matches the selector against the names it reports.
type AdapterLister interface {
	// AdapterNames returns the human-readable names of the available adapters.
	//
	// Returns:
	//   - []string: adapter names in enumeration order
	AdapterNames() []string
}

// AdapterListerFunc adapts a plain function to the AdapterLister interface.
type AdapterListerFunc func() []string

// AdapterNames calls the wrapped function.
//
// Returns:
//   - []string: adapter names in enumeration order
func (f AdapterListerFunc) AdapterNames() []string { return f() }

// Validate checks a PresentOptions value against the recognized option surface.
// Range checks cover the sync interval (0-4) and swapchain depth (>= 1). The
// adapter selector is matched case-insensitively as a prefix against the names
// reported by the lister; the special values "help" and "list" print the
// available adapters and yield ValidationExit.
//
// Parameters:
//   - opts: the options to validate
//   - lister: the adapter enumeration collaborator (may be nil when no adapter selector is set)
//
// Returns:
//   - ValidationResult: Accept, Exit (after informational output), or Reject
//   - error: a diagnostic describing the rejected option, nil unless Reject
func Validate(opts PresentOptions, lister AdapterLister) (ValidationResult, error) {
	if opts.SyncInterval < 0 || opts.SyncInterval > 4 {
		return ValidationReject, fmt.Errorf("sync interval %d out of range [0, 4]", opts.SyncInterval)
	}
	if opts.SwapchainDepth < 1 {
		return ValidationReject, fmt.Errorf("swapchain depth %d must be at least 1", opts.SwapchainDepth)
	}

	if opts.Adapter == "" {
		return ValidationAccept, nil
	}

	var names []string
	if lister != nil {
		names = lister.AdapterNames()
	}

	if opts.Adapter == "help" || opts.Adapter == "list" {
		if len(names) == 0 {
			log.Printf("[Validate] Available adapters: (none)")
		} else {
			log.Printf("[Validate] Available adapters:")
			for _, name := range names {
				log.Printf("[Validate]   %s", name)
			}
		}
		return ValidationExit, nil
	}

	want := strings.ToLower(opts.Adapter)
	for _, name := range names {
		if strings.HasPrefix(strings.ToLower(name), want) {
			return ValidationAccept, nil
		}
	}
	return ValidationReject, fmt.Errorf("no adapter matching %q", opts.Adapter)
}
