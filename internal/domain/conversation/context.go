package conversation

import (
	"time"

	"github.com/arenlabs/aren/internal/domain/memory"
	"github.com/arenlabs/aren/internal/domain/task"
)

// FullContext is the read-only snapshot handed to the decision engine.
// It is assembled on demand and never mutated by consumers.
type FullContext struct {
	User         UserContext        `json:"user"`
	Conversation ConversationWindow `json:"conversation"`
	Environment  Environment        `json:"environment"`
	Memory       MemoryWindow       `json:"memory"`
	Session      SessionWindow      `json:"session"`
}

// UserContext identifies the user the snapshot belongs to.
type UserContext struct {
	ID          int64             `json:"id"`
	DeviceID    string            `json:"device_id"`
	Preferences map[string]string `json:"preferences,omitempty"`
}

// ConversationWindow holds the recent exchange views.
// Current is the last 5 session exchanges in order; History the first 10
// persisted exchanges, newest first.
type ConversationWindow struct {
	Current []Exchange `json:"current"`
	History []Exchange `json:"history"`
}

// Environment describes when and where the request is being handled.
type Environment struct {
	TimeOfDay string    `json:"time_of_day"`
	Timestamp time.Time `json:"timestamp"`
	DeviceID  string    `json:"device_id"`
	UserID    int64     `json:"user_id"`
}

// MemoryWindow holds the first 5 cached memories plus all pending tasks.
type MemoryWindow struct {
	Recent []memory.Note `json:"recent"`
	Tasks  []task.Task   `json:"tasks"`
}

// SessionWindow holds session metadata and the last 5 recorded actions.
type SessionWindow struct {
	StartTime     time.Time `json:"start_time"`
	RecentActions []Action  `json:"recent_actions"`
}

// RecentCapabilities returns the capability names recorded in the last n
// actions, most recent last. Actions without a capability detail are skipped.
func (fc FullContext) RecentCapabilities(n int) []string {
	actions := fc.Session.RecentActions
	if len(actions) > n {
		actions = actions[len(actions)-n:]
	}
	var names []string
	for _, a := range actions {
		if cap, ok := a.Details["capability"].(string); ok {
			names = append(names, cap)
		}
	}
	return names
}

// TimeOfDay buckets an hour into the greeting periods used across the
// assistant: morning 5-12, afternoon 12-17, evening 17-22, otherwise night.
func TimeOfDay(t time.Time) string {
	switch h := t.Hour(); {
	case h >= 5 && h < 12:
		return "morning"
	case h >= 12 && h < 17:
		return "afternoon"
	case h >= 17 && h < 22:
		return "evening"
	default:
		return "night"
	}
}
