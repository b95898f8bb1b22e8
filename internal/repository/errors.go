// Package repository defines error types that are reused across the
// catalog store. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios: a missing
// entry maps to HTTP 404, anything else is an infrastructure failure.
package repository

import "errors"

// ErrEntryNotFound is returned when no entry exists for the given id.
// Handlers should translate this into an HTTP 404 response.
var ErrEntryNotFound = errors.New("entry not found")
