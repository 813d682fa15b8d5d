// Package decision provides the scored-candidate and decision-record types
// produced by the decision engine.
package decision

import "time"

// ScoredCandidate is one capability with its confidence and the evidence
// that produced it. Confidence is always in [0,1].
type ScoredCandidate struct {
	Capability string   `json:"capability"`
	Confidence float64  `json:"confidence"`
	Evidence   []string `json:"evidence"`
}

// Reasoning renders the evidence as a single explanatory line.
func (s ScoredCandidate) Reasoning() string {
	if len(s.Evidence) == 0 {
		return "No clear intent matches found"
	}
	out := "Selected based on: "
	for i, e := range s.Evidence {
		if i > 0 {
			out += "; "
		}
		out += e
	}
	return out
}

// Decision is the record appended to the bounded decision history, one per
// processed input regardless of outcome.
type Decision struct {
	Timestamp  time.Time `json:"timestamp"`
	Input      string    `json:"input"`
	Selected   string    `json:"selected"`
	Confidence float64   `json:"confidence"`
	Evidence   []string  `json:"evidence"`
}

// MaxHistory bounds the decision history; oldest entries are evicted first.
const MaxHistory = 100
