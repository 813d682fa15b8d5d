// Package a2a exposes the assistant over the A2A agent-to-agent protocol:
// a discovery card plus a minimal synchronous task surface.
package a2a

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/arenlabs/aren/internal/domain/capability"
)

// maxTasks caps the in-memory task history. The oldest record falls out
// when a new one would exceed the cap.
const maxTasks = 1000

// Processor runs one utterance through the dispatch pipeline.
type Processor interface {
	ProcessInput(ctx context.Context, deviceID, input string) string
}

// Handler serves the A2A protocol endpoints.
type Handler struct {
	baseURL string
	catalog *capability.Catalog
	proc    Processor

	mu    sync.RWMutex
	tasks map[string]*TaskResponse
	order []string // insertion order, for eviction
}

// NewHandler creates an A2A handler.
func NewHandler(baseURL string, catalog *capability.Catalog, proc Processor) *Handler {
	return &Handler{
		baseURL: baseURL,
		catalog: catalog,
		proc:    proc,
		tasks:   make(map[string]*TaskResponse),
	}
}

// MountRoutes registers A2A routes on the given chi router.
// These are mounted at the root level, not under /api/v1.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/.well-known/agent.json", h.handleAgentCard)
	r.Post("/a2a/tasks", h.handleCreateTask)
	r.Get("/a2a/tasks/{id}", h.handleGetTask)
}

func (h *Handler) handleAgentCard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, BuildAgentCard(h.baseURL, h.catalog))
}

// handleCreateTask runs the utterance synchronously and stores the
// finished record under a server-generated ID. A skill the card does not
// advertise yields a stored "failed" task rather than a transport error.
func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	text, _ := req.Input["text"].(string)
	if text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "input.text is required"})
		return
	}

	resp := &TaskResponse{ID: uuid.NewString()}
	if _, ok := h.catalog.Lookup(req.Skill); req.Skill != "" && !ok {
		resp.Status = "failed"
		resp.Error = "unknown skill: " + req.Skill
	} else {
		device, _ := req.Context["device_id"].(string)
		if device == "" {
			device = "default_user"
		}
		resp.Status = "completed"
		resp.Output = map[string]any{"reply": h.proc.ProcessInput(r.Context(), device, text)}
	}

	h.remember(resp)
	slog.Info("a2a task finished", "id", resp.ID, "skill", req.Skill, "status", resp.Status)
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	resp, ok := h.tasks[chi.URLParam(r, "id")]
	h.mu.RUnlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) remember(resp *TaskResponse) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.order) >= maxTasks {
		delete(h.tasks, h.order[0])
		h.order = h.order[1:]
	}
	h.tasks[resp.ID] = resp
	h.order = append(h.order, resp.ID)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
