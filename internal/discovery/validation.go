// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"errors"
	"fmt"
)

// ErrScriptCollision is the sentinel wrapped by ScriptCollisionError.
var ErrScriptCollision = errors.New("script identifier collision")

// ScriptCollisionError is returned when two script files derive identifiers
// that are equal under case folding. Such files cannot coexist on a
// case-insensitive filesystem and would otherwise overwrite each other.
type ScriptCollisionError struct {
	Identifier string
	FirstFile  string
	SecondFile string
}

// Error implements the error interface.
func (e *ScriptCollisionError) Error() string {
	return fmt.Sprintf(
		"script identifier collision: %q derived from both:\n"+
			"  - %s\n"+
			"  - %s\n\n"+
			"Rename one of the files so every identifier is unique regardless of case",
		e.Identifier, e.FirstFile, e.SecondFile)
}

// Unwrap returns ErrScriptCollision for errors.Is() compatibility.
func (e *ScriptCollisionError) Unwrap() error { return ErrScriptCollision }

// IsValidIdentifier reports whether id is a bare identifier: an ASCII letter or
// underscore followed by letters, digits or underscores.
func IsValidIdentifier(id string) bool {
	if id == "" {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		isLetter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
		isDigit := c >= '0' && c <= '9'
		if i == 0 && !isLetter {
			return false
		}
		if !isLetter && !isDigit {
			return false
		}
	}
	return true
}
