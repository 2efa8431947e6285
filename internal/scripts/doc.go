// SPDX-License-Identifier: MPL-2.0

// Package scripts holds the script registry: it composes every discovered
// script with the shared prelude, primes the store's script cache with each
// composed body, and executes scripts by logical name.
//
// Construction is all-or-nothing. New returns only after every SCRIPT LOAD has
// been answered, so a Registry that exists is fully registered. After
// construction the registry is read-only and safe for concurrent Execute calls.
//
//	reg, err := scripts.New(ctx, store.NewFromClient(rdb), "./lua")
//	if err != nil {
//		return err
//	}
//	n, err := reg.Execute(ctx, "incr_by", "counter", 5)
package scripts
