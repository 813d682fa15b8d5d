// Package conversation provides the domain model for per-user conversational
// state: exchanges, recorded actions, and the assembled context snapshot.
package conversation

import "time"

// Exchange represents one user input and the response it produced.
type Exchange struct {
	UserInput string    `json:"user_input"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
	Language  string    `json:"language"` // ISO 639-1 code, "en" or "hi"
}

// Action records one internal event in the session, most commonly a
// capability invocation.
type Action struct {
	Type      string         `json:"type"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// ActionCapabilityUsed is the action type recorded after every dispatch.
// Details carry "capability", "confidence", "reasoning" and "success".
const ActionCapabilityUsed = "capability_used"

// Bounds for the in-memory session sequences. The current-session view is
// unbounded; everything else evicts oldest entries first.
const (
	MaxHistory  = 20
	MaxActions  = 20
	MaxMemories = 50
)
