// Package task provides the domain model for user tasks and reminders.
package task

import (
	"fmt"
	"time"

	"github.com/arenlabs/aren/internal/domain"
)

// Priority levels. Higher is more urgent.
const (
	PriorityLow    = 1
	PriorityMedium = 2
	PriorityHigh   = 3
)

// Task is a reminder or to-do item belonging to a user.
type Task struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Done        bool       `json:"done"`
	Priority    int        `json:"priority"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// CreateRequest is the input for adding a new task.
type CreateRequest struct {
	UserID      int64      `json:"user_id"`
	Description string     `json:"description"`
	Priority    int        `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// Validate checks the request fields. A zero priority defaults to low.
func (r *CreateRequest) Validate() error {
	if r.UserID == 0 {
		return fmt.Errorf("user_id is required: %w", domain.ErrValidation)
	}
	if r.Description == "" {
		return fmt.Errorf("description is required: %w", domain.ErrValidation)
	}
	if r.Priority == 0 {
		r.Priority = PriorityLow
	}
	if r.Priority < PriorityLow || r.Priority > PriorityHigh {
		return fmt.Errorf("priority must be between %d and %d: %w", PriorityLow, PriorityHigh, domain.ErrValidation)
	}
	return nil
}
