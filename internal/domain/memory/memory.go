// Package memory provides the domain model for long-term memory notes.
package memory

import (
	"fmt"
	"time"

	"github.com/arenlabs/aren/internal/domain"
)

// Note is a single long-term memory entry for a user.
type Note struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Note      string     `json:"note"`
	Context   string     `json:"context,omitempty"` // category tag, e.g. "conversation"
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// CreateRequest is the input for storing a new memory note.
type CreateRequest struct {
	UserID    int64      `json:"user_id"`
	Note      string     `json:"note"`
	Context   string     `json:"context,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Validate checks the request fields.
func (r *CreateRequest) Validate() error {
	if r.UserID == 0 {
		return fmt.Errorf("user_id is required: %w", domain.ErrValidation)
	}
	if r.Note == "" {
		return fmt.Errorf("note is required: %w", domain.ErrValidation)
	}
	return nil
}
