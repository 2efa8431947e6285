// SPDX-License-Identifier: MPL-2.0

package scripts

import "context"

// Store is the remote key-value store as seen by the registry.
type Store interface {
	// Do sends a raw command. The registry uses it for SCRIPT LOAD <body>
	// and treats a string reply as the script's cache hash.
	Do(ctx context.Context, args ...any) (any, error)

	// Eval evaluates a script given as [body, numkeys, args...]. The client
	// is expected to try the cached hash first and fall back to sending the
	// full body when the store does not know it.
	Eval(ctx context.Context, args ...any) (any, error)
}
