// Package broadcast defines the port for pushing live assistant activity to
// connected clients.
package broadcast

import "context"

// Broadcaster fans a typed event out to every connected client.
type Broadcaster interface {
	// BroadcastEvent delivers one event to every client currently connected.
	BroadcastEvent(ctx context.Context, eventType string, payload any)
}
