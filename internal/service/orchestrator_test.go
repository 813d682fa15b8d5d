package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/arenlabs/aren/internal/domain/capability"
	"github.com/arenlabs/aren/internal/pool"
	"github.com/arenlabs/aren/internal/port/handler"
	"github.com/arenlabs/aren/internal/port/messagequeue"
)

// fakeQueue records published messages.
type fakeQueue struct {
	mu         sync.Mutex
	published  []publishedMsg
	publishErr error
}

type publishedMsg struct {
	subject string
	data    []byte
}

func (q *fakeQueue) Publish(_ context.Context, subject string, data []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.publishErr != nil {
		return q.publishErr
	}
	q.published = append(q.published, publishedMsg{subject, append([]byte(nil), data...)})
	return nil
}

func (q *fakeQueue) Subscribe(_ context.Context, _ string, _ messagequeue.Handler) (func(), error) {
	return func() {}, nil
}

func (q *fakeQueue) Drain() error      { return nil }
func (q *fakeQueue) Close() error      { return nil }
func (q *fakeQueue) IsConnected() bool { return true }

func (q *fakeQueue) bySubject(subject string) [][]byte {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out [][]byte
	for _, m := range q.published {
		if m.subject == subject {
			out = append(out, m.data)
		}
	}
	return out
}

func newTestOrchestrator(handlers map[string]handler.Handler, queue messagequeue.Queue) *OrchestratorService {
	contexts := newTestContexts(nil, nil)
	decisions := NewDecisionService(capability.Default(), discardLogger())
	dispatcher := NewDispatchService(handlers, contexts, nil, pool.New(2), time.Second, nil, discardLogger())
	return NewOrchestratorService(contexts, decisions, dispatcher, queue, nil, discardLogger())
}

func TestProcessInputEndToEnd(t *testing.T) {
	h := &fakeHandler{name: capability.Time, extractOK: true, response: "The current time is 10:00 AM. (Abhi samay hai 10:00 AM.)"}
	queue := &fakeQueue{}
	orch := newTestOrchestrator(map[string]handler.Handler{capability.Time: h}, queue)

	out := orch.ProcessInput(context.Background(), "dev-1", "what time is it")
	if out != h.response {
		t.Fatalf("unexpected response %q", out)
	}

	exchanges := queue.bySubject(messagequeue.SubjectExchangeRecorded)
	if len(exchanges) != 1 {
		t.Fatalf("expected one exchange event, got %d", len(exchanges))
	}
	var ex messagequeue.ExchangePayload
	if err := json.Unmarshal(exchanges[0], &ex); err != nil {
		t.Fatalf("unmarshal exchange event: %v", err)
	}
	if ex.Capability != capability.Time || !ex.Success {
		t.Errorf("unexpected exchange payload %+v", ex)
	}
	if ex.DeviceID != "dev-1" || ex.UserID != 1 || ex.Input != "what time is it" {
		t.Errorf("unexpected exchange identity %+v", ex)
	}
	if ex.EventID == "" {
		t.Error("exchange event must carry an event id")
	}

	decisions := queue.bySubject(messagequeue.SubjectDecisionMade)
	if len(decisions) != 1 {
		t.Fatalf("expected one decision event, got %d", len(decisions))
	}
	var dec messagequeue.DecisionPayload
	if err := json.Unmarshal(decisions[0], &dec); err != nil {
		t.Fatalf("unmarshal decision event: %v", err)
	}
	if dec.Capability != capability.Time || dec.Confidence != 1.0 {
		t.Errorf("unexpected decision payload %+v", dec)
	}
	if dec.EventID == "" || dec.EventID == ex.EventID {
		t.Error("decision event must carry its own event id")
	}

	if hist := orch.Decisions(5); len(hist) != 1 || hist[0].Selected != capability.Time {
		t.Errorf("expected decision recorded, got %+v", hist)
	}
}

func TestProcessInputUnknownInput(t *testing.T) {
	queue := &fakeQueue{}
	orch := newTestOrchestrator(map[string]handler.Handler{}, queue)

	out := orch.ProcessInput(context.Background(), "dev-1", "asdkjaskdjqwe")
	if out != unknownResponse {
		t.Fatalf("unexpected response %q", out)
	}

	exchanges := queue.bySubject(messagequeue.SubjectExchangeRecorded)
	if len(exchanges) != 1 {
		t.Fatalf("expected one exchange event, got %d", len(exchanges))
	}
	var ex messagequeue.ExchangePayload
	if err := json.Unmarshal(exchanges[0], &ex); err != nil {
		t.Fatalf("unmarshal exchange event: %v", err)
	}
	if ex.Capability != capability.Unknown || ex.Success {
		t.Errorf("unknown input must publish an unsuccessful exchange, got %+v", ex)
	}
}

func TestProcessInputIdentityShortCircuit(t *testing.T) {
	identity := &fakeHandler{name: capability.Identity, extractOK: true, response: "I am AREN, your personal assistant."}
	search := &fakeHandler{name: capability.Search, extractOK: true, response: "search result"}
	orch := newTestOrchestrator(map[string]handler.Handler{
		capability.Identity: identity,
		capability.Search:   search,
	}, &fakeQueue{})

	out := orch.ProcessInput(context.Background(), "dev-1", "who are you?")
	if out != identity.response {
		t.Fatalf("unexpected response %q", out)
	}
	if search.calls != 0 {
		t.Errorf("identity questions must not reach search, got %d calls", search.calls)
	}
}

func TestProcessInputRecoversFromPanic(t *testing.T) {
	h := &fakeHandler{
		name:      capability.Time,
		extractOK: true,
		invokeFn: func(context.Context) (string, error) {
			panic("nil map write")
		},
	}
	orch := newTestOrchestrator(map[string]handler.Handler{capability.Time: h}, &fakeQueue{})

	out := orch.ProcessInput(context.Background(), "dev-1", "what time is it")
	if out != apology {
		t.Fatalf("expected apology after panic, got %q", out)
	}
}

func TestProcessInputToleratesPublishFailure(t *testing.T) {
	h := &fakeHandler{name: capability.Greeting, extractOK: true, response: "Namaste! How can I help you today?"}
	queue := &fakeQueue{publishErr: errors.New("stream unavailable")}
	orch := newTestOrchestrator(map[string]handler.Handler{capability.Greeting: h}, queue)

	out := orch.ProcessInput(context.Background(), "dev-1", "namaste")
	if out != h.response {
		t.Fatalf("publish failures must not affect the response, got %q", out)
	}
}

func TestProcessInputWithoutQueue(t *testing.T) {
	h := &fakeHandler{name: capability.Joke, extractOK: true, response: "Why did the computer go to the doctor? It had a virus!"}
	orch := newTestOrchestrator(map[string]handler.Handler{capability.Joke: h}, nil)

	out := orch.ProcessInput(context.Background(), "dev-1", "tell me a joke")
	if out != h.response {
		t.Fatalf("unexpected response %q", out)
	}
}
