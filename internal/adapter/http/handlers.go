package http

import (
	"context"
	"net/http"

	"github.com/arenlabs/aren/internal/domain/capability"
	"github.com/arenlabs/aren/internal/port/database"
	"github.com/arenlabs/aren/internal/port/messagequeue"
	"github.com/arenlabs/aren/internal/service"
)

// defaultDevice is the device identity used when a request does not name one.
// Single-device installs never send an ID and land here.
const defaultDevice = "default_user"

// Pinger reports database liveness. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	Orchestrator *service.OrchestratorService
	Contexts     *service.ContextService
	Store        database.Store
	Catalog      *capability.Catalog
	DB           Pinger
	Queue        messagequeue.Queue
}

// deviceID resolves the device identity for a request from the device_id
// query parameter.
func deviceID(r *http.Request) string {
	if id := r.URL.Query().Get("device_id"); id != "" {
		return id
	}
	return defaultDevice
}

// Root handles GET /. Plain-text liveness line kept word for word so
// existing client apps that string-match it keep working.
func (h *Handlers) Root(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("AREN is running now."))
}

// Status handles GET /status with a pipeline self-test.
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	reply := h.Orchestrator.ProcessInput(r.Context(), defaultDevice, "test")
	if reply == "" {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": "AREN engine not responding",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "AREN API is operational",
	})
}

type listenRequest struct {
	Text   string `json:"text"`
	UserID string `json:"userId"`
}

type listenResponse struct {
	Status string `json:"status"`
	Reply  string `json:"reply"`
	UserID string `json:"userId"`
}

// Listen handles POST /listen, the main conversational entry point.
func (h *Handlers) Listen(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[listenRequest](w, r)
	if !ok {
		return
	}
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"status":  "error",
			"message": "Missing 'text' in request",
		})
		return
	}
	device := req.UserID
	if device == "" {
		device = defaultDevice
	}

	reply := h.Orchestrator.ProcessInput(r.Context(), device, req.Text)
	writeJSON(w, http.StatusOK, listenResponse{
		Status: "success",
		Reply:  reply,
		UserID: device,
	})
}

// Healthz handles GET /healthz, probing the database and the queue.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"database": "ok", "queue": "ok"}
	healthy := true

	if h.DB != nil {
		if err := h.DB.Ping(r.Context()); err != nil {
			checks["database"] = "down"
			healthy = false
		}
	}
	if h.Queue != nil && !h.Queue.IsConnected() {
		checks["queue"] = "down"
		healthy = false
	}

	status, code := "ok", http.StatusOK
	if !healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{"status": status, "checks": checks})
}
