// Package pool provides shared concurrency limiting for outbound calls.
package pool

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Pool limits concurrent external capability calls using a weighted semaphore.
// All outbound HTTP calls made by capability handlers go through a shared Pool
// so a burst of weather or search requests cannot exhaust sockets or hammer
// the upstream APIs.
type Pool struct {
	sem *semaphore.Weighted
}

// New creates a Pool that allows at most limit concurrent calls.
func New(limit int) *Pool {
	if limit < 1 {
		limit = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(limit))}
}

// Run acquires a slot, runs fn, and releases the slot.
// Blocks if all slots are busy. Returns ctx.Err() if the context
// is cancelled while waiting for a slot.
// If the pool is nil, fn is executed directly without concurrency control.
func (p *Pool) Run(ctx context.Context, fn func() error) error {
	if p == nil || p.sem == nil {
		return fn()
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)
	return fn()
}
