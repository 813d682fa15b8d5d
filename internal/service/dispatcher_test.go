package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arenlabs/aren/internal/domain"
	"github.com/arenlabs/aren/internal/domain/capability"
	"github.com/arenlabs/aren/internal/domain/decision"
	"github.com/arenlabs/aren/internal/pool"
	"github.com/arenlabs/aren/internal/port/handler"
	"github.com/arenlabs/aren/internal/resilience"
)

// fakeHandler satisfies handler.Handler with scripted behavior.
type fakeHandler struct {
	name      string
	extractOK bool
	response  string
	err       error
	invokeFn  func(ctx context.Context) (string, error)
	calls     int
}

func (h *fakeHandler) Name() string { return h.name }

func (h *fakeHandler) Extract(input string) (capability.Args, bool) {
	if !h.extractOK {
		return nil, false
	}
	return capability.Args{"input": input}, true
}

func (h *fakeHandler) Invoke(ctx context.Context, _ capability.Args) (string, error) {
	h.calls++
	if h.invokeFn != nil {
		return h.invokeFn(ctx)
	}
	return h.response, h.err
}

func newTestDispatcher(handlers map[string]handler.Handler, store *fakeStore, breaker *resilience.Breaker) (*DispatchService, *ContextService) {
	if store == nil {
		store = newFakeStore()
	}
	contexts := newTestContexts(store, nil)
	d := NewDispatchService(handlers, contexts, breaker, pool.New(2), time.Second, nil, discardLogger())
	return d, contexts
}

func choiceFor(name string, confidence float64) decision.ScoredCandidate {
	return decision.ScoredCandidate{
		Capability: name,
		Confidence: confidence,
		Evidence:   []string{"Pattern match: test"},
	}
}

func TestDispatchSuccess(t *testing.T) {
	store := newFakeStore()
	h := &fakeHandler{name: capability.Time, extractOK: true, response: "The current time is 10:00 AM. (Abhi samay hai 10:00 AM.)"}
	d, contexts := newTestDispatcher(map[string]handler.Handler{capability.Time: h}, store, nil)
	ctx := context.Background()

	res, err := d.Dispatch(ctx, "dev-1", "what time is it", choiceFor(capability.Time, 1.0))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !res.Success || res.Response != h.response {
		t.Errorf("unexpected result %+v", res)
	}
	if res.Language != "en" {
		t.Errorf("expected language en, got %q", res.Language)
	}
	if h.calls != 1 {
		t.Errorf("expected one invocation, got %d", h.calls)
	}

	if store.savedCount() != 1 {
		t.Errorf("expected exchange persisted, got %d", store.savedCount())
	}
	snap := contexts.Snapshot(ctx, "dev-1")
	if len(snap.Session.RecentActions) != 1 {
		t.Fatalf("expected one recorded action, got %+v", snap.Session.RecentActions)
	}
	details := snap.Session.RecentActions[0].Details
	if details["capability"] != capability.Time || details["success"] != true {
		t.Errorf("unexpected action details %v", details)
	}
}

func TestDispatchExtractionMissAsksForClarification(t *testing.T) {
	h := &fakeHandler{name: capability.Weather, extractOK: false}
	d, _ := newTestDispatcher(map[string]handler.Handler{capability.Weather: h}, nil, nil)

	res, err := d.Dispatch(context.Background(), "dev-1", "weather", choiceFor(capability.Weather, 1.0))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if res.Response != needLocation {
		t.Errorf("expected location clarification, got %q", res.Response)
	}
	if res.Success {
		t.Error("a clarification is not a successful dispatch")
	}
	if h.calls != 0 {
		t.Errorf("handler must not run without arguments, got %d calls", h.calls)
	}
}

func TestDispatchClarificationPerCapability(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{capability.Weather, needLocation},
		{capability.Calculation, needExpression},
		{capability.Translate, needTranslation},
	}
	for _, tc := range cases {
		h := &fakeHandler{name: tc.name, extractOK: false}
		d, _ := newTestDispatcher(map[string]handler.Handler{tc.name: h}, nil, nil)

		res, err := d.Dispatch(context.Background(), "dev-1", "incomplete", choiceFor(tc.name, 0.9))
		if err != nil {
			t.Fatalf("%s: Dispatch: %v", tc.name, err)
		}
		if res.Response != tc.want {
			t.Errorf("%s: expected %q, got %q", tc.name, tc.want, res.Response)
		}
	}
}

func TestDispatchUnknownCapability(t *testing.T) {
	d, _ := newTestDispatcher(map[string]handler.Handler{}, nil, nil)

	res, err := d.Dispatch(context.Background(), "dev-1", "gibberish", choiceFor(capability.Unknown, 0.5))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if res.Response != unknownResponse {
		t.Errorf("expected unknown response, got %q", res.Response)
	}
	if res.Success {
		t.Error("unknown must not report success")
	}
}

func TestDispatchHandlerErrorUsesFallback(t *testing.T) {
	h := &fakeHandler{name: capability.Search, extractOK: true, err: errors.New("upstream returned 500")}
	d, contexts := newTestDispatcher(map[string]handler.Handler{capability.Search: h}, nil, nil)
	ctx := context.Background()

	res, err := d.Dispatch(ctx, "dev-1", "search for something", choiceFor(capability.Search, 1.0))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if res.Response != fallbacks[capability.Search] {
		t.Errorf("expected search fallback, got %q", res.Response)
	}
	if res.Success {
		t.Error("a fallback is not a successful dispatch")
	}

	snap := contexts.Snapshot(ctx, "dev-1")
	details := snap.Session.RecentActions[len(snap.Session.RecentActions)-1].Details
	if details["success"] != false {
		t.Errorf("expected honest failure in action details, got %v", details)
	}
}

func TestDispatchEmptyResponseUsesFallback(t *testing.T) {
	h := &fakeHandler{name: capability.LaunchApp, extractOK: true, response: ""}
	d, _ := newTestDispatcher(map[string]handler.Handler{capability.LaunchApp: h}, nil, nil)

	res, err := d.Dispatch(context.Background(), "dev-1", "open spotify", choiceFor(capability.LaunchApp, 1.0))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if res.Response != fallbacks[capability.LaunchApp] {
		t.Errorf("expected launch_app fallback, got %q", res.Response)
	}
	if res.Success {
		t.Error("an empty response must not report success")
	}
}

func TestDispatchBreakerRejectsAfterFailures(t *testing.T) {
	h := &fakeHandler{name: capability.Weather, extractOK: true, err: errors.New("connection refused")}
	breaker := resilience.NewBreaker(1, time.Minute)
	d, _ := newTestDispatcher(map[string]handler.Handler{capability.Weather: h}, nil, breaker)
	ctx := context.Background()

	if _, err := d.Dispatch(ctx, "dev-1", "weather in delhi", choiceFor(capability.Weather, 1.0)); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if h.calls != 1 {
		t.Fatalf("expected first call to reach the handler, got %d", h.calls)
	}

	res, err := d.Dispatch(ctx, "dev-1", "weather in delhi", choiceFor(capability.Weather, 1.0))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if h.calls != 1 {
		t.Errorf("expected open breaker to reject before invoking, got %d calls", h.calls)
	}
	if res.Response != fallbacks[capability.Weather] {
		t.Errorf("expected weather fallback, got %q", res.Response)
	}
}

func TestDispatchTimeoutUsesFallback(t *testing.T) {
	h := &fakeHandler{
		name:      capability.Search,
		extractOK: true,
		invokeFn: func(ctx context.Context) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
	contexts := newTestContexts(nil, nil)
	d := NewDispatchService(map[string]handler.Handler{capability.Search: h}, contexts, nil, pool.New(1), 20*time.Millisecond, nil, discardLogger())

	start := time.Now()
	res, err := d.Dispatch(context.Background(), "dev-1", "search for news", choiceFor(capability.Search, 1.0))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("dispatch did not honor the timeout, took %v", elapsed)
	}
	if res.Response != fallbacks[capability.Search] || res.Success {
		t.Errorf("expected search fallback after timeout, got %+v", res)
	}
}

func TestDispatchReturnsWriteErrorWithUsableResponse(t *testing.T) {
	store := newFakeStore()
	h := &fakeHandler{name: capability.Time, extractOK: true, response: "The current time is 10:00 AM."}
	d, _ := newTestDispatcher(map[string]handler.Handler{capability.Time: h}, store, nil)

	// Let the user load succeed, then fail the exchange write.
	if err := d.contexts.Load(context.Background(), "dev-1"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	store.saveExchangeErr = errors.New("disk full")

	res, err := d.Dispatch(context.Background(), "dev-1", "what time is it", choiceFor(capability.Time, 1.0))
	if err == nil {
		t.Fatal("expected exchange write error to surface")
	}
	if !errors.Is(err, domain.ErrContextStore) {
		t.Errorf("expected ErrContextStore in chain, got %v", err)
	}
	if res.Response != h.response || !res.Success {
		t.Errorf("response must stay usable despite the write error, got %+v", res)
	}
}
