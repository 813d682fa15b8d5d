package ws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/arenlabs/aren/internal/port/broadcast"
	"github.com/arenlabs/aren/internal/port/messagequeue"
)

// Event type constants for WebSocket messages. Payloads are the queue
// schemas relayed verbatim.
const (
	EventExchange      = "conversation.exchange"
	EventDecision      = "decision.made"
	EventMemoryCreated = "memory.created"
	EventTaskCreated   = "task.created"
)

// feedSubjects maps queue subjects to the event types clients see.
var feedSubjects = []struct {
	subject string
	event   string
}{
	{messagequeue.SubjectExchangeRecorded, EventExchange},
	{messagequeue.SubjectDecisionMade, EventDecision},
	{messagequeue.SubjectMemoryCreated, EventMemoryCreated},
	{messagequeue.SubjectTaskCreated, EventTaskCreated},
}

// Feed subscribes to the pipeline subjects and relays every message to a
// broadcaster, normally the hub.
type Feed struct {
	queue   messagequeue.Queue
	sink    broadcast.Broadcaster
	cancels []func()
}

// NewFeed creates a feed relaying queue events to sink.
func NewFeed(queue messagequeue.Queue, sink broadcast.Broadcaster) *Feed {
	return &Feed{queue: queue, sink: sink}
}

// Start subscribes to all feed subjects. On a subscription failure the
// already established subscriptions are cancelled before returning.
func (f *Feed) Start(ctx context.Context) error {
	for _, fs := range feedSubjects {
		event := fs.event
		cancel, err := f.queue.Subscribe(ctx, fs.subject, func(ctx context.Context, _ string, data []byte) error {
			f.sink.BroadcastEvent(ctx, event, json.RawMessage(data))
			return nil
		})
		if err != nil {
			f.Stop()
			return fmt.Errorf("subscribing to %s: %w", fs.subject, err)
		}
		f.cancels = append(f.cancels, cancel)
	}
	return nil
}

// Stop cancels all active subscriptions.
func (f *Feed) Stop() {
	for _, cancel := range f.cancels {
		cancel()
	}
	f.cancels = nil
}
