// Package http provides the REST surface over the dispatch pipeline.
package http

import (
	"bufio"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/arenlabs/aren/internal/logger"
)

// hardeningHeaders go on every response. Ordered pairs rather than a map so
// the set is easy to diff against what a scanner reports.
var hardeningHeaders = [...][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"Permissions-Policy", "camera=(), microphone=(), geolocation=()"},
	{"X-XSS-Protection", "0"},
	{"Content-Security-Policy", "default-src 'self'; connect-src 'self' ws: wss:; frame-ancestors 'none'; base-uri 'self'"},
}

// SecurityHeaders sets the standard browser hardening headers on every
// response.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, h := range hardeningHeaders {
			w.Header().Set(h[0], h[1])
		}
		next.ServeHTTP(w, r)
	})
}

// CORS returns middleware that sets CORS headers so browser clients (the
// mobile configurator, the chat page) can reach the API. Preflights are
// answered here and never reach the handlers.
func CORS(allowedOrigin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hdr := w.Header()
			hdr.Set("Access-Control-Allow-Origin", allowedOrigin)
			hdr.Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			hdr.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Logger writes one structured line per request with the status, size and
// latency of the response.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tw := &trackedWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(tw, r)

		slog.Info("http request",
			"request_id", logger.RequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", tw.status,
			"bytes", tw.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// trackedWriter records the status code and body size on their way through.
type trackedWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (tw *trackedWriter) WriteHeader(code int) {
	tw.status = code
	tw.ResponseWriter.WriteHeader(code)
}

func (tw *trackedWriter) Write(p []byte) (int, error) {
	n, err := tw.ResponseWriter.Write(p)
	tw.bytes += n
	return n, err
}

// Hijack implements http.Hijacker, which the WebSocket upgrade needs.
func (tw *trackedWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := tw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("underlying writer cannot hijack the connection")
	}
	return hj.Hijack()
}

// Flush implements http.Flusher for streaming responses.
func (tw *trackedWriter) Flush() {
	if f, ok := tw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
