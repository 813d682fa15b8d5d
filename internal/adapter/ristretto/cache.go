// Package ristretto implements the cache port with an in-process
// dgraph-io/ristretto store. It is the L1 tier: admission and eviction are
// cost-based, with cost measured in value bytes.
package ristretto

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Cache is an in-process cache bounded by total value size.
type Cache struct {
	inner *ristretto.Cache[string, []byte]
}

// New builds a cache holding at most maxCostBytes of values. Counter space
// is sized for ten counters per expected entry, assuming entries around a
// hundred bytes.
func New(maxCostBytes int64) (*Cache, error) {
	inner, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: maxCostBytes / 10,
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{inner: inner}, nil
}

// Get returns the cached value for key, if admitted and not yet evicted.
func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	val, ok := c.inner.Get(key)
	if !ok {
		return nil, false, nil
	}
	return val, true, nil
}

// Set stores value under key with the given TTL. Ristretto may decline
// admission under pressure; that is not an error.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.inner.SetWithTTL(key, value, int64(len(value)), ttl)
	return nil
}

// Delete drops key from the cache.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.inner.Del(key)
	return nil
}

// Close stops the cache's internal goroutines.
func (c *Cache) Close() {
	c.inner.Close()
}
