package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the given chi router. The root,
// status and listen routes are the stable surface mobile clients pin;
// everything else lives under /api/v1.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/", h.Root)
	r.Get("/status", h.Status)
	r.Post("/listen", h.Listen)
	r.Get("/healthz", h.Healthz)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":"0.1.0"}`))
		})

		r.Get("/history", h.GetHistory)

		r.Get("/memories", h.ListMemories)
		r.Post("/memories", h.CreateMemory)

		r.Get("/tasks", h.ListTasks)
		r.Post("/tasks", h.CreateTask)
		r.Post("/tasks/{id}/complete", h.CompleteTask)

		r.Get("/decisions", h.ListDecisions)
		r.Get("/capabilities", h.ListCapabilities)

		r.Get("/preferences", h.ListPreferences)
		r.Get("/preferences/{key}", h.GetPreference)
		r.Put("/preferences/{key}", h.PutPreference)
	})
}
