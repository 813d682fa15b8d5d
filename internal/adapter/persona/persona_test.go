package persona

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/arenlabs/aren/internal/domain/systeminfo"
	"github.com/arenlabs/aren/internal/port/database"
)

type stubStore struct {
	database.Store
	facts []systeminfo.Fact
	err   error
}

func (s *stubStore) ListFacts(_ context.Context, _ string) ([]systeminfo.Fact, error) {
	return s.facts, s.err
}

func at(hour int) func() time.Time {
	return func() time.Time {
		return time.Date(2025, 3, 14, hour, 0, 0, 0, time.UTC)
	}
}

func TestGreetingTimeOfDay(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{9, "Good morning! How can I help you today?"},
		{13, "Good afternoon! How can I help you today?"},
		{19, "Good evening! How can I help you today?"},
		{23, "Hello! Working late tonight?"},
		{2, "Hello! Working late tonight?"},
	}
	for _, tt := range tests {
		h := NewGreeting()
		h.now = at(tt.hour)
		h.randInt = func(int) int { return 0 }

		got, err := h.Invoke(context.Background(), nil)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("hour %d: got %q, want %q", tt.hour, got, tt.want)
		}
	}
}

func TestGreetingPoolCoverage(t *testing.T) {
	h := NewGreeting()
	h.now = at(9)

	for i := range greetings["morning"] {
		idx := i
		h.randInt = func(int) int { return idx }
		got, _ := h.Invoke(context.Background(), nil)
		if got != greetings["morning"][i] {
			t.Errorf("index %d: got %q", i, got)
		}
	}
}

func TestJoke(t *testing.T) {
	h := NewJoke()
	h.randInt = func(int) int { return 3 }

	got, err := h.Invoke(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != "What's a computer's favorite snack? Microchips!" {
		t.Errorf("got %q", got)
	}
}

func TestIdentityFromFacts(t *testing.T) {
	h := NewIdentity(&stubStore{facts: systeminfo.Defaults()}, nil)

	for i := 0; i < 3; i++ {
		idx := i
		h.randInt = func(int) int { return idx }
		got, err := h.Invoke(context.Background(), nil)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(got, "AREN") {
			t.Errorf("variant %d missing AREN: %q", i, got)
		}
	}

	h.randInt = func(int) int { return 0 }
	got, _ := h.Invoke(context.Background(), nil)
	want := "I am AREN, which stands for Assistant for Regular and Extraordinary Needs. I'm an AI assistant designed to help you with various tasks."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestIdentityStoreError(t *testing.T) {
	h := NewIdentity(&stubStore{err: errors.New("connection refused")}, nil)

	got, err := h.Invoke(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != identityFallback {
		t.Errorf("got %q, want fallback", got)
	}
	if !strings.Contains(got, "AREN") {
		t.Error("fallback must name the assistant")
	}
}

func TestIdentityNilStore(t *testing.T) {
	h := NewIdentity(nil, nil)
	got, _ := h.Invoke(context.Background(), nil)
	if got != identityFallback {
		t.Errorf("got %q, want fallback", got)
	}
}
