// SPDX-License-Identifier: MPL-2.0

package scripts

import (
	"io"

	"github.com/charmbracelet/log"

	"libris-cli/internal/discovery"
)

// DefaultConcurrency bounds in-flight SCRIPT LOAD calls during construction.
const DefaultConcurrency = 8

type (
	// Option configures a Registry at construction time.
	Option func(*options)

	options struct {
		logger      *log.Logger
		extension   string
		libraryDir  string
		concurrency int
	}
)

func defaultOptions() options {
	return options{
		logger:      log.New(io.Discard),
		extension:   discovery.DefaultExtension,
		libraryDir:  discovery.LibraryDirName,
		concurrency: DefaultConcurrency,
	}
}

// WithLogger sets the logger used for discovery and registration events.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithExtension overrides the recognized script extension (default ".lua").
func WithExtension(ext string) Option {
	return func(o *options) {
		if ext != "" {
			o.extension = ext
		}
	}
}

// WithLibraryDir overrides the prelude subdirectory name (default "lib").
func WithLibraryDir(name string) Option {
	return func(o *options) {
		if name != "" {
			o.libraryDir = name
		}
	}
}

// WithConcurrency bounds how many SCRIPT LOAD calls may be in flight at once.
// Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}
