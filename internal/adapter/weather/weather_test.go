package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arenlabs/aren/internal/config"
	"github.com/arenlabs/aren/internal/secrets"
)

type memCache struct {
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func testVault(t *testing.T, values map[string]string) *secrets.Vault {
	t.Helper()
	v, err := secrets.NewVault(func() (map[string]string, error) { return values, nil })
	if err != nil {
		t.Fatal(err)
	}
	return v
}

const liveBody = `{
	"weather": [{"main": "Clear", "description": "clear sky"}],
	"main": {"temp": 28.5, "feels_like": 30.1, "humidity": 65}
}`

func TestInvokeLiveReport(t *testing.T) {
	var gotQuery atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(liveBody))
	}))
	defer srv.Close()

	c := newMemCache()
	h := New(config.Weather{Endpoint: srv.URL, Units: "metric", CacheTTL: time.Minute},
		testVault(t, map[string]string{SecretAPIKey: "test-key"}), srv.Client(), c, nil)

	got, err := h.Invoke(context.Background(), map[string]string{"location": "Delhi"})
	if err != nil {
		t.Fatal(err)
	}

	want := "Weather in Delhi: Clear (clear sky)\n" +
		"Temperature: 28.5°C (feels like 30.1°C)\n" +
		"Humidity: 65%\n\n" +
		"Delhi mein mausam: clear sky\n" +
		"Tapman: 28.5°C (mehsoos 30.1°C jaisa)\n" +
		"Namee: 65%"
	if got != want {
		t.Errorf("report mismatch:\ngot  %q\nwant %q", got, want)
	}

	q := gotQuery.Load().(url.Values)
	if q.Get("q") != "Delhi" || q.Get("appid") != "test-key" || q.Get("units") != "metric" {
		t.Errorf("unexpected query params: %v", q)
	}

	if _, ok := c.data["weather:delhi"]; !ok {
		t.Error("live report should be cached")
	}
}

func TestInvokeNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	h := New(config.Weather{Endpoint: srv.URL, Units: "metric"},
		testVault(t, map[string]string{SecretAPIKey: "test-key"}), srv.Client(), nil, nil)

	got, err := h.Invoke(context.Background(), map[string]string{"location": "Atlantis"})
	if err != nil {
		t.Fatal(err)
	}
	want := "Sorry, I couldn't find weather information for Atlantis. (Mujhe Atlantis ka mausam nahi mil raha hai.)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestInvokeSimulatedWithoutKey(t *testing.T) {
	h := New(config.Weather{Endpoint: "http://127.0.0.1:0", Units: "metric"},
		testVault(t, map[string]string{}), nil, nil, nil)

	got, err := h.Invoke(context.Background(), map[string]string{"location": "Delhi"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "[SIMULATED] Weather in Delhi:") {
		t.Errorf("expected simulated report, got %q", got)
	}
	for _, part := range []string{"Temperature:", "Humidity:", "Tapman:", "Namee:"} {
		if !strings.Contains(got, part) {
			t.Errorf("simulated report missing %q:\n%s", part, got)
		}
	}
}

func TestInvokeServerErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	h := New(config.Weather{Endpoint: srv.URL, Units: "metric"},
		testVault(t, map[string]string{SecretAPIKey: "test-key"}), srv.Client(), nil, nil)

	got, err := h.Invoke(context.Background(), map[string]string{"location": "Delhi"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "[SIMULATED] ") {
		t.Errorf("expected simulated fallback, got %q", got)
	}
}

func TestInvokeCacheHit(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(liveBody))
	}))
	defer srv.Close()

	c := newMemCache()
	c.data["weather:delhi"] = []byte("cached report")

	h := New(config.Weather{Endpoint: srv.URL, Units: "metric"},
		testVault(t, map[string]string{SecretAPIKey: "test-key"}), srv.Client(), c, nil)

	got, err := h.Invoke(context.Background(), map[string]string{"location": "Delhi"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "cached report" {
		t.Errorf("got %q, want cached report", got)
	}
	if calls.Load() != 0 {
		t.Errorf("API called %d times despite cache hit", calls.Load())
	}
}

func TestExtract(t *testing.T) {
	h := New(config.Weather{}, nil, nil, nil, nil)

	args, ok := h.Extract("what is the weather in New Delhi?")
	if !ok || args["location"] != "New Delhi" {
		t.Errorf("extract = %v, %v", args, ok)
	}

	if _, ok := h.Extract("tell me a joke"); ok {
		t.Error("extract should fail without a location")
	}
}
