package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	arenhttp "github.com/arenlabs/aren/internal/adapter/http"
	"github.com/arenlabs/aren/internal/domain"
	"github.com/arenlabs/aren/internal/domain/capability"
	"github.com/arenlabs/aren/internal/domain/conversation"
	"github.com/arenlabs/aren/internal/domain/decision"
	"github.com/arenlabs/aren/internal/domain/memory"
	"github.com/arenlabs/aren/internal/domain/systeminfo"
	"github.com/arenlabs/aren/internal/domain/task"
	"github.com/arenlabs/aren/internal/domain/user"
	"github.com/arenlabs/aren/internal/pool"
	"github.com/arenlabs/aren/internal/port/database"
	"github.com/arenlabs/aren/internal/port/handler"
	"github.com/arenlabs/aren/internal/service"
)

// mockStore implements database.Store for testing.
type mockStore struct {
	mu     sync.Mutex
	users  map[string]*user.User
	nextID int64
	notes  []memory.Note
	tasks  []task.Task
	facts  map[string]systeminfo.Fact
}

func newMockStore() *mockStore {
	return &mockStore{
		users: make(map[string]*user.User),
		facts: make(map[string]systeminfo.Fact),
	}
}

func (m *mockStore) EnsureUser(_ context.Context, deviceID string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[deviceID]; ok {
		return u, nil
	}
	m.nextID++
	u := &user.User{ID: m.nextID, DeviceID: deviceID, CreatedAt: time.Now()}
	m.users[deviceID] = u
	return u, nil
}

func (m *mockStore) GetUserByDevice(_ context.Context, deviceID string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[deviceID]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListUsers(_ context.Context) ([]user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]user.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *mockStore) SaveExchange(_ context.Context, _ int64, _ conversation.Exchange) error {
	return nil
}

func (m *mockStore) RecentExchanges(_ context.Context, _ int64, _ int) ([]conversation.Exchange, error) {
	return nil, nil
}

func (m *mockStore) ResponsesForPrompt(_ context.Context, _ int64, _ string) ([]database.StoredResponse, error) {
	return nil, nil
}

func (m *mockStore) SaveMemory(_ context.Context, req memory.CreateRequest) (*memory.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	n := memory.Note{
		ID:        m.nextID,
		UserID:    req.UserID,
		Note:      req.Note,
		Context:   req.Context,
		CreatedAt: time.Now(),
		ExpiresAt: req.ExpiresAt,
	}
	m.notes = append([]memory.Note{n}, m.notes...)
	return &n, nil
}

func (m *mockStore) RecentMemories(_ context.Context, userID int64, limit int) ([]memory.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []memory.Note
	for _, n := range m.notes {
		if n.UserID == userID {
			out = append(out, n)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockStore) CreateTask(_ context.Context, req task.CreateRequest) (*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t := task.Task{
		ID:          m.nextID,
		UserID:      req.UserID,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		CreatedAt:   time.Now(),
	}
	m.tasks = append(m.tasks, t)
	return &t, nil
}

func (m *mockStore) PendingTasks(_ context.Context, userID int64) ([]task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []task.Task
	for _, t := range m.tasks {
		if t.UserID == userID && !t.Done {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockStore) CompleteTask(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			m.tasks[i].Done = true
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) UpsertFact(_ context.Context, fact systeminfo.Fact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.facts[fact.Key] = fact
	return nil
}

func (m *mockStore) GetFact(_ context.Context, key string) (*systeminfo.Fact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.facts[key]; ok {
		return &f, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListFacts(_ context.Context, category string) ([]systeminfo.Fact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []systeminfo.Fact
	for _, f := range m.facts {
		if f.Category == category {
			out = append(out, f)
		}
	}
	return out, nil
}

// mockPrefs implements prefs.Store for testing.
type mockPrefs struct {
	mu   sync.Mutex
	data map[string]map[string]string
}

func (p *mockPrefs) Load(_ context.Context, deviceID string) (map[string]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]string, len(p.data[deviceID]))
	for k, v := range p.data[deviceID] {
		out[k] = v
	}
	return out, nil
}

func (p *mockPrefs) Save(_ context.Context, deviceID string, m map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	p.data[deviceID] = cp
	return nil
}

// stubHandler satisfies handler.Handler with a fixed response.
type stubHandler struct {
	name     string
	response string
}

func (h *stubHandler) Name() string { return h.name }

func (h *stubHandler) Extract(input string) (capability.Args, bool) {
	return capability.Args{"input": input}, true
}

func (h *stubHandler) Invoke(_ context.Context, _ capability.Args) (string, error) {
	return h.response, nil
}

const stubTimeResponse = "The current time is 10:00 AM. (Abhi samay hai 10:00 AM.)"

func newTestRouter() chi.Router {
	store := newMockStore()
	prefStore := &mockPrefs{data: make(map[string]map[string]string)}
	logger := slog.New(slog.DiscardHandler)

	contexts := service.NewContextService(store, prefStore, nil, logger)
	decisions := service.NewDecisionService(capability.Default(), logger)
	handlers := map[string]handler.Handler{
		capability.Time:     &stubHandler{name: capability.Time, response: stubTimeResponse},
		capability.Greeting: &stubHandler{name: capability.Greeting, response: "Hello! How can I help you today?"},
		capability.Search:   &stubHandler{name: capability.Search, response: "Here is what I found."},
	}
	dispatcher := service.NewDispatchService(handlers, contexts, nil, pool.New(2), time.Second, nil, logger)
	orch := service.NewOrchestratorService(contexts, decisions, dispatcher, nil, nil, logger)

	h := &arenhttp.Handlers{
		Orchestrator: orch,
		Contexts:     contexts,
		Store:        store,
		Catalog:      capability.Default(),
	}
	r := chi.NewRouter()
	arenhttp.MountRoutes(r, h)
	return r
}

func TestRootEndpoint(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest("GET", "/", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "AREN is running now." {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}

func TestStatusEndpoint(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest("GET", "/status", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" || body["message"] != "AREN API is operational" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestListenProcessesInput(t *testing.T) {
	r := newTestRouter()
	payload := []byte(`{"text":"what time is it"}`)
	req := httptest.NewRequest("POST", "/listen", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "success" || body["reply"] != stubTimeResponse {
		t.Errorf("unexpected body %v", body)
	}
	if body["userId"] != "default_user" {
		t.Errorf("expected default user, got %q", body["userId"])
	}
}

func TestListenMissingText(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest("POST", "/listen", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["message"] != "Missing 'text' in request" {
		t.Errorf("unexpected message %q", body["message"])
	}
}

func TestListenCustomUser(t *testing.T) {
	r := newTestRouter()
	payload := []byte(`{"text":"hello","userId":"phone-1"}`)
	req := httptest.NewRequest("POST", "/listen", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["userId"] != "phone-1" {
		t.Errorf("expected phone-1, got %q", body["userId"])
	}
}

func TestHistoryAfterListen(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest("POST", "/listen", bytes.NewReader([]byte(`{"text":"what time is it"}`)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("listen failed: %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/api/v1/history", http.NoBody)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var hist []conversation.Exchange
	if err := json.NewDecoder(w.Body).Decode(&hist); err != nil {
		t.Fatal(err)
	}
	if len(hist) != 1 || hist[0].UserInput != "what time is it" {
		t.Errorf("unexpected history %+v", hist)
	}
}

func TestCreateAndListMemories(t *testing.T) {
	r := newTestRouter()
	payload := []byte(`{"note":"prefers green tea","context":"conversation"}`)
	req := httptest.NewRequest("POST", "/api/v1/memories", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created memory.Note
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if created.Note != "prefers green tea" || created.ID == 0 {
		t.Errorf("unexpected note %+v", created)
	}

	req = httptest.NewRequest("GET", "/api/v1/memories", http.NoBody)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var notes []memory.Note
	if err := json.NewDecoder(w.Body).Decode(&notes); err != nil {
		t.Fatal(err)
	}
	if len(notes) != 1 || notes[0].Note != "prefers green tea" {
		t.Errorf("unexpected notes %+v", notes)
	}
}

func TestCreateMemoryMissingNote(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest("POST", "/api/v1/memories", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestTaskLifecycle(t *testing.T) {
	r := newTestRouter()
	payload := []byte(`{"description":"buy groceries","priority":2}`)
	req := httptest.NewRequest("POST", "/api/v1/tasks", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created task.Task
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if created.Description != "buy groceries" || created.ID == 0 {
		t.Errorf("unexpected task %+v", created)
	}

	req = httptest.NewRequest("GET", "/api/v1/tasks", http.NoBody)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var pending []task.Task
	if err := json.NewDecoder(w.Body).Decode(&pending); err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected one pending task, got %+v", pending)
	}

	req = httptest.NewRequest("POST", "/api/v1/tasks/"+strconv.FormatInt(created.ID, 10)+"/complete", http.NoBody)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest("GET", "/api/v1/tasks", http.NoBody)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	pending = nil
	if err := json.NewDecoder(w.Body).Decode(&pending); err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("expected completed task gone, got %+v", pending)
	}
}

func TestCompleteTaskInvalidID(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest("POST", "/api/v1/tasks/abc/complete", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCompleteTaskNotFound(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest("POST", "/api/v1/tasks/999/complete", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestDecisionsEndpoint(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest("POST", "/listen", bytes.NewReader([]byte(`{"text":"what time is it"}`)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	req = httptest.NewRequest("GET", "/api/v1/decisions", http.NoBody)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var decisions []decision.Decision
	if err := json.NewDecoder(w.Body).Decode(&decisions); err != nil {
		t.Fatal(err)
	}
	if len(decisions) != 1 || decisions[0].Selected != capability.Time {
		t.Errorf("unexpected decisions %+v", decisions)
	}
}

func TestCapabilitiesEndpoint(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest("GET", "/api/v1/capabilities", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var caps []struct {
		Name         string   `json:"name"`
		Keywords     []string `json:"keywords"`
		RequiresArgs bool     `json:"requires_args"`
	}
	if err := json.NewDecoder(w.Body).Decode(&caps); err != nil {
		t.Fatal(err)
	}
	if len(caps) != 10 {
		t.Fatalf("expected 10 capabilities, got %d", len(caps))
	}
	if caps[0].Name != capability.Time {
		t.Errorf("expected catalog order, got %q first", caps[0].Name)
	}
	for _, c := range caps {
		if c.Name == capability.Weather && !c.RequiresArgs {
			t.Error("weather must require arguments")
		}
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest("PUT", "/api/v1/preferences/tone", bytes.NewReader([]byte(`{"value":"formal"}`)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest("GET", "/api/v1/preferences/tone", http.NoBody)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["value"] != "formal" {
		t.Errorf("unexpected preference %v", body)
	}

	req = httptest.NewRequest("GET", "/api/v1/preferences/missing", http.NoBody)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing key, got %d", w.Code)
	}
}

func TestPutPreferenceMissingValue(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest("PUT", "/api/v1/preferences/tone", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

// failingPrefs rejects every save so handler error mapping can be tested.
type failingPrefs struct{}

func (failingPrefs) Load(context.Context, string) (map[string]string, error) {
	return map[string]string{}, nil
}

func (failingPrefs) Save(context.Context, string, map[string]string) error {
	return errors.New("disk full")
}

func TestPutPreferenceStoreDown(t *testing.T) {
	contexts := service.NewContextService(newMockStore(), failingPrefs{}, nil, slog.New(slog.DiscardHandler))
	h := &arenhttp.Handlers{Contexts: contexts, Catalog: capability.Default()}
	r := chi.NewRouter()
	arenhttp.MountRoutes(r, h)

	req := httptest.NewRequest("PUT", "/api/v1/preferences/tone", bytes.NewReader([]byte(`{"value":"formal"}`)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when the preference store is down, got %d: %s", w.Code, w.Body.String())
	}
}

func TestVersionEndpoint(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest("GET", "/api/v1/", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["version"] == "" {
		t.Error("expected version in response")
	}
}

// failingPinger always reports the database down.
type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthzDegraded(t *testing.T) {
	h := &arenhttp.Handlers{DB: failingPinger{}}
	r := chi.NewRouter()
	arenhttp.MountRoutes(r, h)

	req := httptest.NewRequest("GET", "/healthz", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "degraded" || body.Checks["database"] != "down" {
		t.Errorf("unexpected health body %+v", body)
	}
}

func TestHealthzOK(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest("GET", "/healthz", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
