package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	arenotel "github.com/arenlabs/aren/internal/adapter/otel"
	"github.com/arenlabs/aren/internal/domain/capability"
	"github.com/arenlabs/aren/internal/domain/conversation"
	"github.com/arenlabs/aren/internal/domain/decision"
	"github.com/arenlabs/aren/internal/port/messagequeue"
)

// apology is the single boundary response for anything unexpected escaping
// the pipeline.
const apology = "I encountered an error. Please try again. (Kuch gadbad ho gayi. Phir se koshish karein.)"

// OrchestratorService is the top-level entry point. It composes the
// candidate identifier, the decision engine and the dispatcher, and emits
// one exchange event and one decision event per processed input.
type OrchestratorService struct {
	contexts   *ContextService
	decisions  *DecisionService
	dispatcher *DispatchService
	queue      messagequeue.Queue
	metrics    *arenotel.Metrics
	logger     *slog.Logger
	now        func() time.Time
}

// NewOrchestratorService creates an OrchestratorService. queue and metrics
// may be nil; events and instruments are then skipped.
func NewOrchestratorService(
	contexts *ContextService,
	decisions *DecisionService,
	dispatcher *DispatchService,
	queue messagequeue.Queue,
	metrics *arenotel.Metrics,
	logger *slog.Logger,
) *OrchestratorService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrchestratorService{
		contexts:   contexts,
		decisions:  decisions,
		dispatcher: dispatcher,
		queue:      queue,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// ProcessInput runs one input through identify, decide and dispatch. It
// always returns a non-empty string; panics and residual errors convert to
// the bilingual apology at this boundary and nowhere else.
func (s *OrchestratorService) ProcessInput(ctx context.Context, deviceID, text string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("orchestrator: panic recovered", "device_id", deviceID, "panic", r)
			out = apology
		}
	}()

	ctx, span := arenotel.StartProcessSpan(ctx, deviceID)
	defer span.End()

	s.logger.Info("processing input", "device_id", deviceID, "input", text)
	if kw := s.contexts.Keywords(text); len(kw) > 0 {
		s.logger.Debug("input keywords", "keywords", kw)
	}

	_, ispan := arenotel.StartStageSpan(ctx, "identify")
	candidates := capability.Identify(text)
	ispan.End()

	snap := s.contexts.Snapshot(ctx, deviceID)

	_, dspan := arenotel.StartStageSpan(ctx, "decide")
	choice := s.decisions.Decide(text, candidates, snap)
	dspan.End()
	s.metrics.RecordDecision(ctx, choice.Capability, choice.Confidence)

	hctx, hspan := arenotel.StartStageSpan(ctx, "dispatch")
	result, err := s.dispatcher.Dispatch(hctx, deviceID, text, choice)
	hspan.End()
	if err != nil {
		s.logger.Error("orchestrator: exchange may not be durably recorded",
			"device_id", deviceID, "error", err)
	}

	s.publishExchange(ctx, snap.User, text, choice.Capability, result)
	s.publishDecision(ctx, snap.User.ID, text, choice)

	if result.Response == "" {
		return apology
	}
	return result.Response
}

// Decisions exposes the recent decision history for the admin surfaces.
func (s *OrchestratorService) Decisions(limit int) []decision.Decision {
	return s.decisions.History(limit)
}

func (s *OrchestratorService) publishExchange(ctx context.Context, usr conversation.UserContext, input, capName string, res DispatchResult) {
	if s.queue == nil {
		return
	}
	payload := messagequeue.ExchangePayload{
		EventID:    uuid.NewString(),
		UserID:     usr.ID,
		DeviceID:   usr.DeviceID,
		Input:      input,
		Response:   res.Response,
		Capability: capName,
		Success:    res.Success,
		Language:   res.Language,
		Timestamp:  s.now(),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("orchestrator: marshal exchange event failed", "error", err)
		return
	}
	if err := s.queue.Publish(ctx, messagequeue.SubjectExchangeRecorded, data); err != nil {
		s.logger.Warn("orchestrator: publish exchange event failed", "error", err)
	}
}

func (s *OrchestratorService) publishDecision(ctx context.Context, userID int64, input string, choice decision.ScoredCandidate) {
	if s.queue == nil {
		return
	}
	payload := messagequeue.DecisionPayload{
		EventID:    uuid.NewString(),
		UserID:     userID,
		Input:      input,
		Capability: choice.Capability,
		Confidence: choice.Confidence,
		Evidence:   choice.Evidence,
		Timestamp:  s.now(),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("orchestrator: marshal decision event failed", "error", err)
		return
	}
	if err := s.queue.Publish(ctx, messagequeue.SubjectDecisionMade, data); err != nil {
		s.logger.Warn("orchestrator: publish decision event failed", "error", err)
	}
}
