// SPDX-License-Identifier: MPL-2.0

// Package discovery finds Lua script sources on disk and composes the shared
// library prelude that is prepended to each of them.
//
// A script directory holds files named <identifier>.lua and an optional lib/
// subdirectory. Every qualifying file in lib/ is concatenated, each followed by
// a newline, to form the prelude. Listings are processed in lexicographic file
// name order so the prelude and the discovered set are reproducible across
// filesystems.
//
// File organization:
//   - discovery.go: ScriptSource, Discover and identifier derivation
//   - library.go: ReadLibrary and Compose
//   - validation.go: identifier rules and ScriptCollisionError
//   - diagnostic.go: non-fatal discovery diagnostics
package discovery
