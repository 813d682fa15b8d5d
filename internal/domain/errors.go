// Package domain holds the sentinel errors shared across the assistant.
// Adapters wrap them with context; the HTTP layer maps them to statuses.
package domain

import "errors"

// ErrNotFound marks a lookup for an entity that does not exist.
var ErrNotFound = errors.New("not found")

// ErrValidation marks input rejected by a domain Validate method. The
// wrapping message says which field and why.
var ErrValidation = errors.New("validation failed")

// ErrContextStore marks a context store read or write failure. Reads
// degrade to empty context sections; writes surface to the caller.
var ErrContextStore = errors.New("context store failure")
