// Package tiered layers an in-process L1 cache over a shared remote L2.
package tiered

import (
	"context"
	"time"

	"github.com/arenlabs/aren/internal/port/cache"
)

// Cache reads through L1 into L2 and keeps the two loosely convergent.
// L1 hits cost nothing, L2 hits are copied into L1, and no L1 entry
// outlives the configured cap, so instances pick up each other's writes
// within one cap interval.
type Cache struct {
	l1    cache.Cache
	l2    cache.Cache
	l1Cap time.Duration
}

// New builds a tiered cache. l1Cap bounds the lifetime of every L1
// entry, whether written directly or copied up from L2.
func New(l1, l2 cache.Cache, l1Cap time.Duration) *Cache {
	return &Cache{l1: l1, l2: l2, l1Cap: l1Cap}
}

// Get returns the value from the nearest level that has it.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if val, ok, err := c.l1.Get(ctx, key); err != nil || ok {
		return val, ok, err
	}
	val, ok, err := c.l2.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	// Seed L1 so the next lookup stays in-process. Best effort: if L1
	// declines the entry the next Get just pays the L2 round trip again.
	_ = c.l1.Set(ctx, key, val, c.l1Cap)
	return val, true, nil
}

// Set writes the value to both levels. L1 receives the caller's ttl
// clamped to the cap; L2 receives it untouched.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.l1.Set(ctx, key, value, c.capTTL(ttl)); err != nil {
		return err
	}
	return c.l2.Set(ctx, key, value, ttl)
}

// Delete evicts the key from both levels, L2 first. Clearing L2 before
// L1 narrows the window in which a concurrent Get can copy the dying
// entry back into L1, where it would survive for up to the cap.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.l2.Delete(ctx, key); err != nil {
		return err
	}
	return c.l1.Delete(ctx, key)
}

func (c *Cache) capTTL(ttl time.Duration) time.Duration {
	if c.l1Cap > 0 && (ttl <= 0 || ttl > c.l1Cap) {
		return c.l1Cap
	}
	return ttl
}
