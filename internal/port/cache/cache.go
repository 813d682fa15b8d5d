// Package cache defines the port interface for key-value caching. Adapters
// back it with an in-process store, a shared store, or a combination of both.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with per-entry expiry.
//
// Get reports a miss as (nil, false, nil); the error return is reserved for
// transport failures on remote backends. Set overwrites any existing entry
// and a zero ttl means the backend default. Delete on an absent key is not
// an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
