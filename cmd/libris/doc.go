// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for libris.
//
// Commands are built from an App, the composition root that owns the config
// provider, the store factory and the output writers. Tests construct an App
// with injected Dependencies and drive the cobra tree directly.
package cmd
