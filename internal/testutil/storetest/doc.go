// SPDX-License-Identifier: MPL-2.0

// Package storetest provides a recording fake of the script store boundary.
//
// This package is separate from testutil so that tests of packages imported by
// testutil can still use it.
//
// # Usage
//
//	import "libris-cli/internal/testutil/storetest"
//
//	rec := storetest.New(storetest.WithEvalResult(int64(3), nil))
//	reg, err := scripts.New(ctx, rec, dir)
//	...
//	calls := rec.EvalCalls()
package storetest
