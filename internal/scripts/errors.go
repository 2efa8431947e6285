// SPDX-License-Identifier: MPL-2.0

package scripts

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrScriptNotFound is the sentinel wrapped by ScriptNotFoundError.
	ErrScriptNotFound = errors.New("script not found")
	// ErrNilStore is returned by New when no store is supplied.
	ErrNilStore = errors.New("script store is nil")
)

type (
	// ScriptNotFoundError is returned when Execute is called with a name that
	// was not produced at construction time. No store call is made.
	ScriptNotFoundError struct {
		Name string
		// Available lists the registered names in sorted order.
		Available []string
	}

	// RegistrationError is returned when the store rejects SCRIPT LOAD for a
	// composed script. It aborts construction.
	RegistrationError struct {
		Name string
		Err  error
	}
)

// Error implements the error interface.
func (e *ScriptNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("script %q not found: no scripts are registered", e.Name)
	}
	return fmt.Sprintf("script %q not found (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// Unwrap returns ErrScriptNotFound for errors.Is() compatibility.
func (e *ScriptNotFoundError) Unwrap() error { return ErrScriptNotFound }

// Error implements the error interface.
func (e *RegistrationError) Error() string {
	return fmt.Sprintf("failed to register script %q: %v", e.Name, e.Err)
}

// Unwrap returns the store error.
func (e *RegistrationError) Unwrap() error { return e.Err }
