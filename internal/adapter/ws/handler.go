// Package ws implements the WebSocket adapter: a live feed of assistant
// activity for dashboards and companion apps.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// writeWait bounds a single broadcast write so one stalled client does
// not hold up delivery to the rest.
const writeWait = 5 * time.Second

// Message is the envelope for all WebSocket messages.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// client is one accepted connection plus the cancel for its read loop.
type client struct {
	sock   *websocket.Conn
	cancel context.CancelFunc
}

// Hub tracks the active WebSocket connections and fans broadcasts out
// to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
	}
}

// HandleWS upgrades the request to a WebSocket connection and registers
// it with the hub.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	sock, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // CORS handled by middleware
	})
	if err != nil {
		slog.Error("websocket accept failed", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	c := &client{sock: sock, cancel: cancel}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	slog.Info("websocket connected", "remote", r.RemoteAddr)

	go h.watch(ctx, c)
}

// watch drains inbound frames until the connection dies. Clients are
// listen-only; reading is how the hub notices a disconnect and how the
// library answers pings.
func (h *Hub) watch(ctx context.Context, c *client) {
	defer func() {
		h.drop(c)
		_ = c.sock.Close(websocket.StatusNormalClosure, "")
	}()
	for {
		if _, _, err := c.sock.Read(ctx); err != nil {
			return
		}
	}
}

// Broadcast sends a message to every connected client. Writes happen
// outside the hub lock, against a snapshot, so a slow client cannot
// block new connections, and a failed one is dropped on the spot.
func (h *Hub) Broadcast(ctx context.Context, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("websocket marshal failed", "error", err)
		return
	}

	for _, c := range h.snapshot() {
		wctx, cancel := context.WithTimeout(ctx, writeWait)
		err := c.sock.Write(wctx, websocket.MessageText, data)
		cancel()
		if err != nil {
			slog.Debug("websocket write failed", "error", err)
			h.drop(c)
		}
	}
}

// BroadcastEvent marshals a typed event and broadcasts it.
func (h *Hub) BroadcastEvent(ctx context.Context, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("websocket marshal event payload failed", "type", eventType, "error", err)
		return
	}
	h.Broadcast(ctx, Message{Type: eventType, Payload: json.RawMessage(data)})
}

// ConnectionCount returns the number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown closes every connection. The close frame goes out before the
// read loop is cancelled so clients see a clean going-away status. The
// caller stops routing new requests to HandleWS first.
func (h *Hub) Shutdown() {
	for _, c := range h.snapshot() {
		_ = c.sock.Close(websocket.StatusGoingAway, "server shutting down")
		h.drop(c)
	}
}

func (h *Hub) snapshot() []*client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, c)
	}
	return out
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		c.cancel()
		delete(h.clients, c)
		slog.Info("websocket disconnected")
	}
}
