// Package clock implements the time and date capability handlers.
package clock

import (
	"context"
	"time"

	"github.com/arenlabs/aren/internal/domain/capability"
)

// TimeHandler answers "what time is it" style requests.
type TimeHandler struct {
	now func() time.Time
}

// NewTime creates a time handler reading the system clock.
func NewTime() *TimeHandler {
	return &TimeHandler{now: time.Now}
}

// Name returns "time".
func (h *TimeHandler) Name() string { return capability.Time }

// Extract never fails; the capability takes no arguments.
func (h *TimeHandler) Extract(_ string) (capability.Args, bool) {
	return capability.Args{}, true
}

// Invoke reports the current wall-clock time.
func (h *TimeHandler) Invoke(_ context.Context, _ capability.Args) (string, error) {
	return "The current time is " + h.now().Format("15:04:05"), nil
}

// DateHandler answers "what is the date" style requests.
type DateHandler struct {
	now func() time.Time
}

// NewDate creates a date handler reading the system clock.
func NewDate() *DateHandler {
	return &DateHandler{now: time.Now}
}

// Name returns "date".
func (h *DateHandler) Name() string { return capability.Date }

// Extract never fails; the capability takes no arguments.
func (h *DateHandler) Extract(_ string) (capability.Args, bool) {
	return capability.Args{}, true
}

// Invoke reports today's date.
func (h *DateHandler) Invoke(_ context.Context, _ capability.Args) (string, error) {
	return "Today's date is " + h.now().Format("2006-01-02"), nil
}
