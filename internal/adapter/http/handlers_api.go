package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/arenlabs/aren/internal/domain/conversation"
	"github.com/arenlabs/aren/internal/domain/decision"
	"github.com/arenlabs/aren/internal/domain/memory"
	"github.com/arenlabs/aren/internal/domain/task"
)

// GetHistory handles GET /api/v1/history.
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", conversation.MaxHistory)
	hist, err := h.Contexts.History(r.Context(), deviceID(r), limit)
	if err != nil {
		writeDomainError(w, err, "load history")
		return
	}
	if hist == nil {
		hist = []conversation.Exchange{}
	}
	writeJSON(w, http.StatusOK, hist)
}

// ListMemories handles GET /api/v1/memories.
func (h *Handlers) ListMemories(w http.ResponseWriter, r *http.Request) {
	userID, err := h.Contexts.UserID(r.Context(), deviceID(r))
	if err != nil {
		writeDomainError(w, err, "resolve user")
		return
	}
	notes, err := h.Store.RecentMemories(r.Context(), userID, queryInt(r, "limit", conversation.MaxMemories))
	if err != nil {
		writeDomainError(w, err, "list memories")
		return
	}
	if notes == nil {
		notes = []memory.Note{}
	}
	writeJSON(w, http.StatusOK, notes)
}

type createMemoryRequest struct {
	DeviceID  string     `json:"device_id"`
	Note      string     `json:"note"`
	Context   string     `json:"context"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// CreateMemory handles POST /api/v1/memories.
func (h *Handlers) CreateMemory(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[createMemoryRequest](w, r)
	if !ok {
		return
	}
	if req.Note == "" {
		writeError(w, http.StatusBadRequest, "note is required")
		return
	}
	device := req.DeviceID
	if device == "" {
		device = defaultDevice
	}
	note, err := h.Contexts.AddMemory(r.Context(), device, req.Note, req.Context, req.ExpiresAt)
	if err != nil {
		writeDomainError(w, err, "create memory")
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// ListTasks handles GET /api/v1/tasks.
func (h *Handlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.Contexts.PendingTasks(r.Context(), deviceID(r))
	if err != nil {
		writeDomainError(w, err, "list tasks")
		return
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

type createTaskRequest struct {
	DeviceID    string     `json:"device_id"`
	Description string     `json:"description"`
	Priority    int        `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

// CreateTask handles POST /api/v1/tasks.
func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[createTaskRequest](w, r)
	if !ok {
		return
	}
	if req.Description == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}
	device := req.DeviceID
	if device == "" {
		device = defaultDevice
	}
	created, err := h.Contexts.AddTask(r.Context(), device, req.Description, req.Priority, req.DueDate)
	if err != nil {
		writeDomainError(w, err, "create task")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// CompleteTask handles POST /api/v1/tasks/{id}/complete.
func (h *Handlers) CompleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}
	if err := h.Contexts.CompleteTask(r.Context(), deviceID(r), id); err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "completed", "id": id})
}

// ListDecisions handles GET /api/v1/decisions.
func (h *Handlers) ListDecisions(w http.ResponseWriter, r *http.Request) {
	decisions := h.Orchestrator.Decisions(queryInt(r, "limit", 20))
	if decisions == nil {
		decisions = []decision.Decision{}
	}
	writeJSON(w, http.StatusOK, decisions)
}

type capabilityInfo struct {
	Name         string   `json:"name"`
	Keywords     []string `json:"keywords"`
	RequiresArgs bool     `json:"requires_args"`
}

// ListCapabilities handles GET /api/v1/capabilities.
func (h *Handlers) ListCapabilities(w http.ResponseWriter, _ *http.Request) {
	all := h.Catalog.All()
	out := make([]capabilityInfo, 0, len(all))
	for _, c := range all {
		out = append(out, capabilityInfo{
			Name:         c.Name,
			Keywords:     c.Keywords,
			RequiresArgs: c.RequiresArgs,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// ListPreferences handles GET /api/v1/preferences.
func (h *Handlers) ListPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.Contexts.Preferences(r.Context(), deviceID(r))
	if err != nil {
		writeDomainError(w, err, "load preferences")
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

// GetPreference handles GET /api/v1/preferences/{key}.
func (h *Handlers) GetPreference(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	prefs, err := h.Contexts.Preferences(r.Context(), deviceID(r))
	if err != nil {
		writeDomainError(w, err, "load preferences")
		return
	}
	value, ok := prefs[key]
	if !ok {
		writeError(w, http.StatusNotFound, "preference not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": value})
}

type putPreferenceRequest struct {
	DeviceID string `json:"device_id"`
	Value    string `json:"value"`
}

// PutPreference handles PUT /api/v1/preferences/{key}.
func (h *Handlers) PutPreference(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	req, ok := readJSON[putPreferenceRequest](w, r)
	if !ok {
		return
	}
	if req.Value == "" {
		writeError(w, http.StatusBadRequest, "value is required")
		return
	}
	device := req.DeviceID
	if device == "" {
		device = deviceID(r)
	}
	if err := h.Contexts.SetPreference(r.Context(), device, key, req.Value); err != nil {
		writeDomainError(w, err, "save preference")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": req.Value})
}
