// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Common helpers include environment variable management (MustSetenv),
// script directory fixtures (WriteScriptDir, MustWriteFile, MustMkdirAll),
// resource cleanup (MustClose, DeferClose) and the container slot limiter used
// by integration tests (ContainerSemaphore).
package testutil
