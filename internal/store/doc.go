// SPDX-License-Identifier: MPL-2.0

// Package store adapts a go-redis client to the script registry's store
// boundary. Eval prefers EVALSHA and falls back to EVAL when the server
// answers NOSCRIPT, so callers can always hand it the full script body.
package store
