// Package database defines the database store port (interface).
package database

import (
	"context"
	"time"

	"github.com/arenlabs/aren/internal/domain/conversation"
	"github.com/arenlabs/aren/internal/domain/memory"
	"github.com/arenlabs/aren/internal/domain/systeminfo"
	"github.com/arenlabs/aren/internal/domain/task"
	"github.com/arenlabs/aren/internal/domain/user"
)

// Store is the port interface for database operations.
type Store interface {
	// Users
	EnsureUser(ctx context.Context, deviceID string) (*user.User, error)
	GetUserByDevice(ctx context.Context, deviceID string) (*user.User, error)
	ListUsers(ctx context.Context) ([]user.User, error)

	// Conversations
	SaveExchange(ctx context.Context, userID int64, ex conversation.Exchange) error
	RecentExchanges(ctx context.Context, userID int64, limit int) ([]conversation.Exchange, error)
	ResponsesForPrompt(ctx context.Context, userID int64, prompt string) ([]StoredResponse, error)

	// Memories
	SaveMemory(ctx context.Context, req memory.CreateRequest) (*memory.Note, error)
	RecentMemories(ctx context.Context, userID int64, limit int) ([]memory.Note, error)

	// Tasks
	CreateTask(ctx context.Context, req task.CreateRequest) (*task.Task, error)
	PendingTasks(ctx context.Context, userID int64) ([]task.Task, error)
	CompleteTask(ctx context.Context, id int64) error

	// System info
	UpsertFact(ctx context.Context, fact systeminfo.Fact) error
	GetFact(ctx context.Context, key string) (*systeminfo.Fact, error)
	ListFacts(ctx context.Context, category string) ([]systeminfo.Fact, error)
}

// StoredResponse is a persisted response row together with its usage counters.
type StoredResponse struct {
	ID        int64
	Text      string
	UsedCount int
	LastUsed  time.Time
}
