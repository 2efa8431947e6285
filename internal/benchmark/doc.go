// SPDX-License-Identifier: MPL-2.0

// Package benchmark holds benchmarks for the libris hot paths:
//   - CUE config parsing and schema validation
//   - Script discovery and prelude composition
//   - Registration and execution against a recording store
//   - The full pipeline against an in-memory Redis
//
// Run them with:
//
//	go test -run='^$' -bench=. ./internal/benchmark
package benchmark
