// Package middleware provides HTTP middleware for the AREN API.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/arenlabs/aren/internal/logger"
)

const headerRequestID = "X-Request-ID"

// RequestID tags every request with an ID for log correlation. A client may
// supply its own X-Request-ID; otherwise a UUID is generated. The ID rides
// the request context and is echoed on the response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}
