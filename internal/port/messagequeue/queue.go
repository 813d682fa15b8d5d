// Package messagequeue defines the queue port for the event pipeline,
// the subjects the dispatcher publishes on, and their payload schemas.
package messagequeue

import "context"

// Handler consumes one message. The context carries request-scoped
// values such as the request ID; returning an error makes the adapter
// retry or dead-letter the message.
type Handler func(ctx context.Context, subject string, data []byte) error

// Queue is implemented by the NATS adapter and by test stubs.
type Queue interface {
	// Publish sends a message to the given subject.
	Publish(ctx context.Context, subject string, data []byte) error

	// Subscribe registers a handler for the given subject and returns a
	// function that cancels the subscription.
	Subscribe(ctx context.Context, subject string, handler Handler) (cancel func(), err error)

	// Drain stops accepting messages, waits for in-flight handlers, then
	// closes the connection.
	Drain() error

	// Close tears the connection down immediately.
	Close() error

	// IsConnected reports whether the queue is currently reachable.
	IsConnected() bool
}

// Subjects published by the dispatch pipeline.
const (
	SubjectExchangeRecorded = "conversations.exchange" // one message per processed input
	SubjectDecisionMade     = "decisions.made"         // routing decision with confidence
	SubjectMemoryCreated    = "memories.created"
	SubjectTaskCreated      = "tasks.created"
)
