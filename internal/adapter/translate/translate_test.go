package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arenlabs/aren/internal/config"
	"github.com/arenlabs/aren/internal/domain/capability"
)

func TestInvokeBuiltins(t *testing.T) {
	h := New(config.Translate{Endpoint: "http://127.0.0.1:0"}, nil, nil)

	tests := []struct {
		text, target, want string
	}{
		{"hello", "es", "hola"},
		{"Hello", "hi", "नमस्ते"},
		{"thank you", "fr", "merci"},
		{"GOODBYE", "es", "adiós"},
	}
	for _, tt := range tests {
		got, err := h.Invoke(context.Background(), capability.Args{"text": tt.text, "target": tt.target})
		if err != nil {
			t.Fatalf("Invoke(%q, %q): %v", tt.text, tt.target, err)
		}
		if got != tt.want {
			t.Errorf("Invoke(%q, %q) = %q, want %q", tt.text, tt.target, got, tt.want)
		}
	}
}

func TestInvokeRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req["q"] != "good morning" || req["source"] != "auto" || req["target"] != "de" {
			t.Errorf("unexpected request: %v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"translatedText": "guten Morgen"})
	}))
	defer srv.Close()

	h := New(config.Translate{Endpoint: srv.URL}, srv.Client(), nil)

	got, err := h.Invoke(context.Background(), capability.Args{"text": "good morning", "target": "de"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "guten Morgen" {
		t.Errorf("got %q, want %q", got, "guten Morgen")
	}
}

func TestInvokeUnavailableFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	h := New(config.Translate{Endpoint: srv.URL}, srv.Client(), nil)

	got, err := h.Invoke(context.Background(), capability.Args{"text": "good morning", "target": "de"})
	if err != nil {
		t.Fatal(err)
	}
	want := "Translation to de unavailable. Original text: good morning"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtract(t *testing.T) {
	h := New(config.Translate{}, nil, nil)

	args, ok := h.Extract("translate hello to spanish")
	if !ok || args["text"] != "hello" || args["target"] != "es" {
		t.Errorf("extract = %v, %v", args, ok)
	}

	args, ok = h.Extract("what is water in hindi")
	if !ok || args["text"] != "water" || args["target"] != "hi" {
		t.Errorf("extract = %v, %v", args, ok)
	}

	if _, ok := h.Extract("translate hello to klingon"); ok {
		t.Error("unknown language should not extract")
	}
}
