package clock

import (
	"context"
	"testing"
	"time"
)

func fixedNow() time.Time {
	return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
}

func TestTimeHandler(t *testing.T) {
	h := NewTime()
	h.now = fixedNow

	args, ok := h.Extract("what time is it")
	if !ok {
		t.Fatal("extract should always succeed")
	}

	got, err := h.Invoke(context.Background(), args)
	if err != nil {
		t.Fatal(err)
	}
	want := "The current time is 09:26:53"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDateHandler(t *testing.T) {
	h := NewDate()
	h.now = fixedNow

	got, err := h.Invoke(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	want := "Today's date is 2025-03-14"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestHandlerNames(t *testing.T) {
	if NewTime().Name() != "time" {
		t.Errorf("time handler name = %q", NewTime().Name())
	}
	if NewDate().Name() != "date" {
		t.Errorf("date handler name = %q", NewDate().Name())
	}
}
