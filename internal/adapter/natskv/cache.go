// Package natskv adapts a NATS JetStream key-value bucket to the cache
// port, serving as the shared L2 behind the in-process L1.
package natskv

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// Cache stores entries in one JetStream KV bucket. Keys derive from
// free user text (normalized queries, location names), so they are
// first mapped onto the restricted character set NATS accepts. Entry
// lifetime comes from the bucket's TTL setting; the per-call ttl is
// ignored.
type Cache struct {
	kv jetstream.KeyValue
}

// New wraps an existing KV bucket.
func New(kv jetstream.KeyValue) *Cache {
	return &Cache{kv: kv}
}

// Get fetches the value for key, reporting a missing key as a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, err := c.kv.Get(ctx, encodeKey(key))
	switch {
	case errors.Is(err, jetstream.ErrKeyNotFound):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	return entry.Value(), true, nil
}

// Set writes the value under key. The bucket decides the lifetime.
func (c *Cache) Set(ctx context.Context, key string, value []byte, _ time.Duration) error {
	_, err := c.kv.Put(ctx, encodeKey(key), value)
	return err
}

// Delete removes the key; deleting an absent key is fine.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.kv.Delete(ctx, encodeKey(key)); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return err
	}
	return nil
}

// encodeKey maps an arbitrary cache key onto the character set NATS KV
// allows ([-/_=.a-zA-Z0-9]). Disallowed runes become underscores and a
// leading or trailing dot is trimmed; the mapping is deterministic so
// Get, Set, and Delete always agree on the stored key.
func encodeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '/', r == '=', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	enc := strings.Trim(b.String(), ".")
	if enc == "" {
		return "_"
	}
	return enc
}
