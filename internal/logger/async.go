package logger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Closer flushes and stops a handler. New returns one so callers can drain
// buffered records on shutdown.
type Closer interface {
	Close()
}

// nopCloser is returned in synchronous mode where there is nothing to drain.
type nopCloser struct{}

func (nopCloser) Close() {}

// entry pairs a record with the handler that accepted it, so records logged
// through a WithAttrs or WithGroup derivative keep their attributes when a
// worker delivers them.
type entry struct {
	h   slog.Handler
	rec slog.Record
}

// AsyncHandler decouples log emission from log writing. Handle enqueues the
// record onto a bounded channel and a small worker pool delivers them to the
// wrapped handler. When the channel is full the record is dropped rather
// than blocking the caller.
type AsyncHandler struct {
	inner   slog.Handler
	queue   chan entry
	wg      *sync.WaitGroup
	dropped *atomic.Int64
}

// NewAsyncHandler wraps inner with a queue of the given capacity drained by
// the given number of workers.
func NewAsyncHandler(inner slog.Handler, chanSize, workers int) *AsyncHandler {
	h := &AsyncHandler{
		inner:   inner,
		queue:   make(chan entry, chanSize),
		wg:      &sync.WaitGroup{},
		dropped: &atomic.Int64{},
	}
	for range workers {
		h.wg.Add(1)
		go h.deliver()
	}
	return h
}

func (h *AsyncHandler) deliver() {
	defer h.wg.Done()
	for e := range h.queue {
		_ = e.h.Handle(context.Background(), e.rec)
	}
}

// Enabled delegates to the wrapped handler.
func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle enqueues the record and never blocks. A full queue increments the
// drop counter instead.
func (h *AsyncHandler) Handle(_ context.Context, rec slog.Record) error { //nolint:gocritic // slog.Handler interface requires value receiver
	select {
	case h.queue <- entry{h: h.inner, rec: rec}:
	default:
		h.dropped.Add(1)
	}
	return nil
}

// WithAttrs returns a derivative that shares the queue and workers but
// delivers through an inner handler carrying the extra attributes.
func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{
		inner:   h.inner.WithAttrs(attrs),
		queue:   h.queue,
		wg:      h.wg,
		dropped: h.dropped,
	}
}

// WithGroup returns a derivative that shares the queue and workers but
// delivers through an inner handler opening the named group.
func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{
		inner:   h.inner.WithGroup(name),
		queue:   h.queue,
		wg:      h.wg,
		dropped: h.dropped,
	}
}

// DroppedCount reports how many records were discarded on a full queue.
func (h *AsyncHandler) DroppedCount() int64 {
	return h.dropped.Load()
}

// Close stops accepting records and blocks until the workers have delivered
// everything still queued.
func (h *AsyncHandler) Close() {
	close(h.queue)
	h.wg.Wait()
}
