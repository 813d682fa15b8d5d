package http

import (
	"bufio"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func passThrough(t *testing.T, mw func(http.Handler) http.Handler, req *http.Request) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	reached := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})
	w := httptest.NewRecorder()
	mw(inner).ServeHTTP(w, req)
	return w, reached
}

func TestSecurityHeaders(t *testing.T) {
	w, reached := passThrough(t, SecurityHeaders, httptest.NewRequest("GET", "/", http.NoBody))
	if !reached {
		t.Fatal("request never reached the handler")
	}

	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}
	for name, value := range want {
		if got := w.Header().Get(name); got != value {
			t.Errorf("%s = %q, want %q", name, got, value)
		}
	}
	if csp := w.Header().Get("Content-Security-Policy"); !strings.Contains(csp, "frame-ancestors 'none'") {
		t.Errorf("CSP %q does not forbid framing", csp)
	}
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest("OPTIONS", "/listen", http.NoBody)
	w, reached := passThrough(t, CORS("*"), req)

	if reached {
		t.Error("preflight must not reach the handler")
	}
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestCORSForwardsRealRequests(t *testing.T) {
	req := httptest.NewRequest("GET", "/status", http.NoBody)
	w, reached := passThrough(t, CORS("https://app.example"), req)

	if !reached {
		t.Fatal("GET should pass through the CORS layer")
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestTrackedWriterRecords(t *testing.T) {
	tw := &trackedWriter{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}

	tw.WriteHeader(http.StatusCreated)
	if _, err := tw.Write([]byte(`{"status":"success"}`)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if tw.status != http.StatusCreated {
		t.Errorf("status = %d, want 201", tw.status)
	}
	if tw.bytes != 20 {
		t.Errorf("bytes = %d, want 20", tw.bytes)
	}
}

// hijackRecorder gives httptest.ResponseRecorder a Hijack method so the
// delegation path is reachable in tests.
type hijackRecorder struct {
	*httptest.ResponseRecorder
	called bool
}

func (h *hijackRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h.called = true
	return nil, nil, nil
}

func TestTrackedWriterDelegatesHijack(t *testing.T) {
	inner := &hijackRecorder{ResponseRecorder: httptest.NewRecorder()}
	tw := &trackedWriter{ResponseWriter: inner, status: http.StatusOK}

	if _, _, err := tw.Hijack(); err != nil {
		t.Fatalf("Hijack: %v", err)
	}
	if !inner.called {
		t.Error("Hijack did not reach the underlying writer")
	}
}

func TestTrackedWriterHijackUnsupported(t *testing.T) {
	// A plain ResponseRecorder has no Hijack method.
	tw := &trackedWriter{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}

	if _, _, err := tw.Hijack(); err == nil {
		t.Fatal("want an error when the underlying writer cannot hijack")
	}
}

func TestTrackedWriterFlush(t *testing.T) {
	inner := httptest.NewRecorder()
	tw := &trackedWriter{ResponseWriter: inner, status: http.StatusOK}

	tw.Flush()

	if !inner.Flushed {
		t.Fatal("Flush did not reach the underlying writer")
	}
}
