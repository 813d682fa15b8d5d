package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arenlabs/aren/internal/domain"
	"github.com/arenlabs/aren/internal/domain/conversation"
	"github.com/arenlabs/aren/internal/domain/memory"
	"github.com/arenlabs/aren/internal/domain/task"
	"github.com/arenlabs/aren/internal/port/database"
	"github.com/arenlabs/aren/internal/port/messagequeue"
	"github.com/arenlabs/aren/internal/port/prefs"
)

// Window sizes for the snapshot handed to the decision engine, and the number
// of history rows pulled from the database when a device is first seen.
const (
	loadHistoryLimit = 10
	snapCurrent      = 5
	snapHistory      = 10
	snapMemories     = 5
	snapActions      = 5
)

// ContextService is the single authority for per-user conversational state:
// the session exchange views, recorded actions, cached memories and tasks,
// and the preference map. State is kept per device and reconstructed from
// the database and the preference store the first time a device shows up.
type ContextService struct {
	store  database.Store
	prefs  prefs.Store
	queue  messagequeue.Queue
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	users map[string]*userState
}

// userState is the in-memory context of one device. All fields are guarded
// by the state's own mutex so unrelated devices never serialize on each
// other.
type userState struct {
	mu     sync.Mutex
	loaded bool

	userID       int64
	deviceID     string
	sessionStart time.Time

	preferences map[string]string
	current     []conversation.Exchange // session view, unbounded, oldest first
	history     []conversation.Exchange // persisted view, newest first, capped
	actions     []conversation.Action   // oldest first, capped
	memories    []memory.Note           // newest first, capped
	tasks       []task.Task
}

// NewContextService creates a ContextService backed by the given stores.
// queue may be nil; memory and task events are then skipped.
func NewContextService(store database.Store, prefStore prefs.Store, queue messagequeue.Queue, logger *slog.Logger) *ContextService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContextService{
		store:  store,
		prefs:  prefStore,
		queue:  queue,
		logger: logger,
		now:    time.Now,
		users:  make(map[string]*userState),
	}
}

// Load warms the in-memory context for a device, reconstructing it from the
// preference store and the database. Subsequent calls are cheap no-ops; the
// other operations load lazily so calling Load first is optional.
func (s *ContextService) Load(ctx context.Context, deviceID string) error {
	_, err := s.ensure(ctx, deviceID)
	return err
}

// ensure returns the state for a device, loading it on first touch. Only the
// user row is a hard dependency; every other section degrades to empty with
// a logged error.
func (s *ContextService) ensure(ctx context.Context, deviceID string) (*userState, error) {
	s.mu.Lock()
	u, ok := s.users[deviceID]
	if !ok {
		u = &userState{deviceID: deviceID}
		s.users[deviceID] = u
	}
	s.mu.Unlock()

	u.mu.Lock()
	defer u.mu.Unlock()
	if u.loaded {
		return u, nil
	}
	if err := s.load(ctx, u); err != nil {
		return nil, err
	}
	u.loaded = true
	return u, nil
}

// load populates a fresh userState. Caller holds u.mu.
func (s *ContextService) load(ctx context.Context, u *userState) error {
	usr, err := s.store.EnsureUser(ctx, u.deviceID)
	if err != nil {
		return fmt.Errorf("ensure user %q: %w", u.deviceID, err)
	}
	u.userID = usr.ID
	u.sessionStart = s.now()

	u.preferences, err = s.prefs.Load(ctx, u.deviceID)
	if err != nil {
		s.logger.Error("context: loading preferences failed", "device_id", u.deviceID, "error", err)
		u.preferences = map[string]string{}
	}
	if u.preferences == nil {
		u.preferences = map[string]string{}
	}

	u.history, err = s.store.RecentExchanges(ctx, u.userID, loadHistoryLimit)
	if err != nil {
		s.logger.Error("context: loading conversation history failed", "device_id", u.deviceID, "error", err)
		u.history = nil
	}
	u.tasks, err = s.store.PendingTasks(ctx, u.userID)
	if err != nil {
		s.logger.Error("context: loading pending tasks failed", "device_id", u.deviceID, "error", err)
		u.tasks = nil
	}
	u.memories, err = s.store.RecentMemories(ctx, u.userID, conversation.MaxMemories)
	if err != nil {
		s.logger.Error("context: loading memories failed", "device_id", u.deviceID, "error", err)
		u.memories = nil
	}

	s.logger.Info("context: device state loaded",
		"device_id", u.deviceID,
		"user_id", u.userID,
		"history", len(u.history),
		"tasks", len(u.tasks),
		"memories", len(u.memories))
	return nil
}

// UserID returns the database identity for a device.
func (s *ContextService) UserID(ctx context.Context, deviceID string) (int64, error) {
	u, err := s.ensure(ctx, deviceID)
	if err != nil {
		return 0, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.userID, nil
}

// RecordExchange appends the exchange to both in-memory views and persists
// it with usage-count upsert semantics. The in-memory views are updated even
// when the durable write fails; the write error is logged and returned so
// the caller knows the exchange may not be recorded.
func (s *ContextService) RecordExchange(ctx context.Context, deviceID, input, response, language string) error {
	u, err := s.ensure(ctx, deviceID)
	if err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	ex := conversation.Exchange{
		UserInput: input,
		Response:  response,
		Timestamp: s.now(),
		Language:  language,
	}
	u.current = append(u.current, ex)
	u.history = append([]conversation.Exchange{ex}, u.history...)
	if len(u.history) > conversation.MaxHistory {
		u.history = u.history[:conversation.MaxHistory]
	}

	if err := s.store.SaveExchange(ctx, u.userID, ex); err != nil {
		s.logger.Error("context: persisting exchange failed", "device_id", deviceID, "error", err)
		return fmt.Errorf("save exchange: %w (%w)", err, domain.ErrContextStore)
	}
	return nil
}

// AddMemory stores a memory note and prepends it to the local cache.
func (s *ContextService) AddMemory(ctx context.Context, deviceID, note, contextTag string, expiresAt *time.Time) (*memory.Note, error) {
	u, err := s.ensure(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	u.mu.Lock()

	n, err := s.store.SaveMemory(ctx, memory.CreateRequest{
		UserID:    u.userID,
		Note:      note,
		Context:   contextTag,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		u.mu.Unlock()
		s.logger.Error("context: saving memory failed", "device_id", deviceID, "error", err)
		return nil, err
	}

	u.memories = append([]memory.Note{*n}, u.memories...)
	if len(u.memories) > conversation.MaxMemories {
		u.memories = u.memories[:conversation.MaxMemories]
	}
	u.mu.Unlock()

	s.publish(ctx, messagequeue.SubjectMemoryCreated, messagequeue.MemoryCreatedPayload{
		EventID:  uuid.NewString(),
		UserID:   n.UserID,
		MemoryID: n.ID,
		Note:     n.Note,
	})
	return n, nil
}

// AddTask stores a task and appends it to the local pending list. A task
// without a due date defaults to one day out.
func (s *ContextService) AddTask(ctx context.Context, deviceID, description string, priority int, due *time.Time) (*task.Task, error) {
	u, err := s.ensure(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	u.mu.Lock()

	if due == nil {
		d := s.now().Add(24 * time.Hour)
		due = &d
	}
	t, err := s.store.CreateTask(ctx, task.CreateRequest{
		UserID:      u.userID,
		Description: description,
		Priority:    priority,
		DueDate:     due,
	})
	if err != nil {
		u.mu.Unlock()
		s.logger.Error("context: saving task failed", "device_id", deviceID, "error", err)
		return nil, err
	}

	u.tasks = append(u.tasks, *t)
	u.mu.Unlock()

	s.publish(ctx, messagequeue.SubjectTaskCreated, messagequeue.TaskCreatedPayload{
		EventID:     uuid.NewString(),
		UserID:      t.UserID,
		TaskID:      t.ID,
		Description: t.Description,
		Priority:    t.Priority,
	})
	return t, nil
}

// PendingTasks returns the open tasks for a device in creation order.
func (s *ContextService) PendingTasks(ctx context.Context, deviceID string) ([]task.Task, error) {
	u, err := s.ensure(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]task.Task, len(u.tasks))
	copy(out, u.tasks)
	return out, nil
}

// CompleteTask marks a task done and drops it from the local pending list.
func (s *ContextService) CompleteTask(ctx context.Context, deviceID string, id int64) error {
	u, err := s.ensure(ctx, deviceID)
	if err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := s.store.CompleteTask(ctx, id); err != nil {
		s.logger.Error("context: completing task failed", "device_id", deviceID, "task_id", id, "error", err)
		return err
	}
	for i, t := range u.tasks {
		if t.ID == id {
			u.tasks = append(u.tasks[:i], u.tasks[i+1:]...)
			break
		}
	}
	return nil
}

// RecordAction appends an action to the bounded in-session list. Actions are
// session-local and never persisted.
func (s *ContextService) RecordAction(ctx context.Context, deviceID, actionType string, details map[string]any) error {
	u, err := s.ensure(ctx, deviceID)
	if err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	u.actions = append(u.actions, conversation.Action{
		Type:      actionType,
		Details:   details,
		Timestamp: s.now(),
	})
	if len(u.actions) > conversation.MaxActions {
		u.actions = u.actions[len(u.actions)-conversation.MaxActions:]
	}
	return nil
}

// SetPreference updates one key and rewrites the device's whole preference
// file. Preference writes are rare and never concurrent per device, so the
// full rewrite keeps the file format trivial.
func (s *ContextService) SetPreference(ctx context.Context, deviceID, key, value string) error {
	u, err := s.ensure(ctx, deviceID)
	if err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	u.preferences[key] = value
	if err := s.prefs.Save(ctx, deviceID, u.preferences); err != nil {
		s.logger.Error("context: saving preferences failed", "device_id", deviceID, "error", err)
		return fmt.Errorf("save preferences: %w (%w)", err, domain.ErrContextStore)
	}
	return nil
}

// Preferences returns a copy of the device's preference map.
func (s *ContextService) Preferences(ctx context.Context, deviceID string) (map[string]string, error) {
	u, err := s.ensure(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make(map[string]string, len(u.preferences))
	for k, v := range u.preferences {
		out[k] = v
	}
	return out, nil
}

// History returns a copy of the device's persisted-view exchange history,
// newest first. limit <= 0 returns the whole bounded view.
func (s *ContextService) History(ctx context.Context, deviceID string, limit int) ([]conversation.Exchange, error) {
	u, err := s.ensure(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	if limit <= 0 || limit > len(u.history) {
		limit = len(u.history)
	}
	return firstN(u.history, limit), nil
}

// Snapshot assembles the read-only context handed to the decision engine.
// It never fails: a device that cannot be loaded yields a snapshot with only
// the environment section filled in, and the pipeline carries on.
func (s *ContextService) Snapshot(ctx context.Context, deviceID string) conversation.FullContext {
	now := s.now()
	env := conversation.Environment{
		TimeOfDay: conversation.TimeOfDay(now),
		Timestamp: now,
		DeviceID:  deviceID,
	}

	u, err := s.ensure(ctx, deviceID)
	if err != nil {
		s.logger.Error("context: snapshot degraded to empty", "device_id", deviceID, "error", err)
		return conversation.FullContext{
			User:        conversation.UserContext{DeviceID: deviceID},
			Environment: env,
		}
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	env.UserID = u.userID

	prefsCopy := make(map[string]string, len(u.preferences))
	for k, v := range u.preferences {
		prefsCopy[k] = v
	}

	return conversation.FullContext{
		User: conversation.UserContext{
			ID:          u.userID,
			DeviceID:    u.deviceID,
			Preferences: prefsCopy,
		},
		Conversation: conversation.ConversationWindow{
			Current: lastN(u.current, snapCurrent),
			History: firstN(u.history, snapHistory),
		},
		Environment: env,
		Memory: conversation.MemoryWindow{
			Recent: firstN(u.memories, snapMemories),
			Tasks:  firstN(u.tasks, len(u.tasks)),
		},
		Session: conversation.SessionWindow{
			StartTime:     u.sessionStart,
			RecentActions: lastN(u.actions, snapActions),
		},
	}
}

// Keywords extracts up to 10 significant lower-cased tokens from text.
func (s *ContextService) Keywords(text string) []string {
	return conversation.Keywords(text)
}

// publish emits an event on the queue. Failures are logged, never returned;
// the write the event describes has already been committed.
func (s *ContextService) publish(ctx context.Context, subject string, payload any) {
	if s.queue == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("context: marshal event failed", "subject", subject, "error", err)
		return
	}
	if err := s.queue.Publish(ctx, subject, data); err != nil {
		s.logger.Warn("context: publish event failed", "subject", subject, "error", err)
	}
}

func firstN[T any](in []T, n int) []T {
	if len(in) < n {
		n = len(in)
	}
	out := make([]T, n)
	copy(out, in[:n])
	return out
}

func lastN[T any](in []T, n int) []T {
	if len(in) > n {
		in = in[len(in)-n:]
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
