package service

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/arenlabs/aren/internal/domain/capability"
	"github.com/arenlabs/aren/internal/domain/conversation"
	"github.com/arenlabs/aren/internal/domain/decision"
)

// recencyWindow is how many of the latest recorded actions are inspected for
// the dampening adjustment; recencyFactor is applied at most once per
// candidate, no matter how often the capability shows up in that window.
const (
	recencyWindow = 3
	recencyFactor = 0.9
)

// DecisionService scores candidate capabilities against the input and the
// context snapshot and selects one. It owns the bounded decision history,
// which is shared across requests and guarded by a mutex. It never touches
// durable storage.
type DecisionService struct {
	catalog *capability.Catalog
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.Mutex
	history []decision.Decision
}

// NewDecisionService creates a DecisionService over the given catalog.
func NewDecisionService(catalog *capability.Catalog, logger *slog.Logger) *DecisionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DecisionService{
		catalog: catalog,
		logger:  logger,
		now:     time.Now,
	}
}

// Decide scores each candidate and returns the winner. Candidates without a
// catalog entry score zero and drop out. Ties keep the input order of the
// candidate list, so the identifier's ordering doubles as the tie-break
// policy. When nothing scores above zero the unknown fallback is returned
// with fixed confidence 0.5. Every call appends one record to the decision
// history regardless of outcome.
func (s *DecisionService) Decide(input string, candidates []string, snap conversation.FullContext) decision.ScoredCandidate {
	lower := strings.ToLower(input)
	tokens := tokenSet(lower)
	recent := snap.RecentCapabilities(recencyWindow)

	var scored []decision.ScoredCandidate
	for _, name := range candidates {
		entry, ok := s.catalog.Lookup(name)
		if !ok {
			continue
		}

		var score float64
		var evidence []string

		for _, p := range entry.Patterns {
			if p.Expr.MatchString(lower) {
				if p.Weight > score {
					score = p.Weight
				}
				evidence = append(evidence, "Pattern match: "+p.Expr.String())
			}
		}

		var matched []string
		for _, kw := range entry.Keywords {
			if _, ok := tokens[kw]; ok {
				matched = append(matched, kw)
			}
		}
		if len(matched) > 0 {
			ks := float64(len(matched)) / float64(len(entry.Keywords)) * 0.8
			if ks > score {
				score = ks
			}
			evidence = append(evidence, "Keyword matches: "+strings.Join(matched, ", "))
		}

		for _, r := range recent {
			if r == name {
				score *= recencyFactor
				evidence = append(evidence, "Recent usage adjustment")
				break
			}
		}

		if score > 0 {
			scored = append(scored, decision.ScoredCandidate{
				Capability: name,
				Confidence: score,
				Evidence:   evidence,
			})
		}
	}

	choice := decision.ScoredCandidate{Capability: capability.Unknown, Confidence: 0.5}
	if len(scored) > 0 {
		sort.SliceStable(scored, func(i, j int) bool {
			return scored[i].Confidence > scored[j].Confidence
		})
		choice = scored[0]
	}

	s.record(lower, choice)
	s.logger.Info("decision made",
		"capability", choice.Capability,
		"confidence", choice.Confidence,
		"candidates", len(candidates))
	return choice
}

// record appends one decision, evicting the oldest past the cap.
func (s *DecisionService) record(input string, choice decision.ScoredCandidate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, decision.Decision{
		Timestamp:  s.now(),
		Input:      input,
		Selected:   choice.Capability,
		Confidence: choice.Confidence,
		Evidence:   choice.Evidence,
	})
	if len(s.history) > decision.MaxHistory {
		s.history = s.history[len(s.history)-decision.MaxHistory:]
	}
}

// History returns a copy of the most recent decisions, oldest first.
func (s *DecisionService) History(limit int) []decision.Decision {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.history
	if limit > 0 && len(h) > limit {
		h = h[len(h)-limit:]
	}
	out := make([]decision.Decision, len(h))
	copy(out, h)
	return out
}

func tokenSet(lower string) map[string]struct{} {
	fields := strings.Fields(lower)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
