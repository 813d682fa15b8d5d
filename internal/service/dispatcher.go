package service

import (
	"context"
	"log/slog"
	"time"

	arenotel "github.com/arenlabs/aren/internal/adapter/otel"
	"github.com/arenlabs/aren/internal/domain/capability"
	"github.com/arenlabs/aren/internal/domain/conversation"
	"github.com/arenlabs/aren/internal/domain/decision"
	"github.com/arenlabs/aren/internal/pool"
	"github.com/arenlabs/aren/internal/port/handler"
	"github.com/arenlabs/aren/internal/resilience"
)

// Clarification strings returned when argument extraction finds nothing
// usable. The handler is never invoked in that case; only weather,
// calculation and translate can miss, every other extractor always succeeds.
const (
	needLocation    = "I need a location to check the weather. (Mausam jaanne ke liye jagah ka naam batayein.)"
	needExpression  = "I need an expression to calculate. (Mujhe ganana ke liye kuch dein.)"
	needTranslation = "I need text and target language for translation. (Anuvad ke liye text aur bhasha batayein.)"
)

// unknownResponse answers inputs no capability claimed.
const unknownResponse = "I'm not sure how to help with that. Could you please rephrase or try something else? (Mujhe samajh nahi aaya. Kripya doosre tarike se batayen.)"

// fallbacks are the user-facing strings substituted when a handler fails.
var fallbacks = map[string]string{
	capability.Weather:     "Sorry, I couldn't get the weather information right now. (Mausam ki jaankari abhi uplabdh nahi hai.)",
	capability.Calculation: "Sorry, I couldn't perform that calculation. Please check the format. (Ganana nahi kar paya. Format check karein.)",
	capability.Translate:   "Sorry, I couldn't translate that. Please try again. (Anuvad nahi kar paya. Dobara koshish karein.)",
	capability.LaunchApp:   "Sorry, I couldn't launch that application. (App shuru nahi kar paya.)",
	capability.Search:      "Sorry, I couldn't find that information. (Jaankari nahi mil payi.)",
}

const fallbackDefault = "Sorry, something went wrong. Please try again. (Kuch gadbad ho gayi. Dobara koshish karein.)"

// DispatchResult is what one dispatched input produced. Success reports
// whether a handler actually ran and returned a response; clarifications,
// fallbacks and the unknown answer all count as not successful.
type DispatchResult struct {
	Response string
	Language string
	Success  bool
}

// DispatchService resolves the selected capability to its handler, extracts
// arguments, invokes the handler through the shared call pool and circuit
// breaker, and unconditionally records the exchange and the action
// afterwards.
type DispatchService struct {
	handlers map[string]handler.Handler
	contexts *ContextService
	breaker  *resilience.Breaker
	calls    *pool.Pool
	timeout  time.Duration
	metrics  *arenotel.Metrics
	logger   *slog.Logger
}

// NewDispatchService creates a DispatchService. breaker, calls and metrics
// may be nil; timeout <= 0 falls back to 10 seconds.
func NewDispatchService(
	handlers map[string]handler.Handler,
	contexts *ContextService,
	breaker *resilience.Breaker,
	calls *pool.Pool,
	timeout time.Duration,
	metrics *arenotel.Metrics,
	logger *slog.Logger,
) *DispatchService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DispatchService{
		handlers: handlers,
		contexts: contexts,
		breaker:  breaker,
		calls:    calls,
		timeout:  timeout,
		metrics:  metrics,
		logger:   logger,
	}
}

// Dispatch handles one decided input end to end. The bookkeeping after
// handling is unconditional; a failed exchange write is returned alongside
// the result so the caller knows the response is usable but may not be
// durably recorded.
func (s *DispatchService) Dispatch(ctx context.Context, deviceID, input string, choice decision.ScoredCandidate) (DispatchResult, error) {
	response, success := s.handle(ctx, input, choice)

	res := DispatchResult{
		Response: response,
		Language: conversation.DetectLanguage(response),
		Success:  success,
	}

	err := s.contexts.RecordExchange(ctx, deviceID, input, response, res.Language)
	if aerr := s.contexts.RecordAction(ctx, deviceID, conversation.ActionCapabilityUsed, map[string]any{
		"capability": choice.Capability,
		"confidence": choice.Confidence,
		"reasoning":  choice.Reasoning(),
		"success":    success,
	}); aerr != nil && err == nil {
		err = aerr
	}
	return res, err
}

// handle produces the response text for the chosen capability.
func (s *DispatchService) handle(ctx context.Context, input string, choice decision.ScoredCandidate) (string, bool) {
	name := choice.Capability
	h, ok := s.handlers[name]
	if !ok {
		if name != capability.Unknown {
			s.logger.Error("dispatch: no handler for capability", "capability", name)
		}
		return unknownResponse, false
	}

	args, ok := h.Extract(input)
	if !ok {
		s.logger.Info("dispatch: extraction found no arguments", "capability", name)
		return clarification(name), false
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	hctx, span := arenotel.StartHandlerSpan(callCtx, name)
	defer span.End()

	var response string
	invoke := func() error {
		out, err := h.Invoke(hctx, args)
		if err != nil {
			return err
		}
		response = out
		return nil
	}
	err := s.calls.Run(hctx, func() error {
		if s.breaker != nil {
			return s.breaker.Execute(invoke)
		}
		return invoke()
	})
	if err != nil {
		s.logger.Error("dispatch: handler failed", "capability", name, "error", err)
		s.metrics.RecordHandlerError(ctx, name)
		return fallback(name), false
	}
	if response == "" {
		s.logger.Error("dispatch: handler returned empty response", "capability", name)
		s.metrics.RecordHandlerError(ctx, name)
		return fallback(name), false
	}
	return response, true
}

func clarification(name string) string {
	switch name {
	case capability.Weather:
		return needLocation
	case capability.Calculation:
		return needExpression
	case capability.Translate:
		return needTranslation
	default:
		return unknownResponse
	}
}

func fallback(name string) string {
	if msg, ok := fallbacks[name]; ok {
		return msg
	}
	return fallbackDefault
}
