package postgres

import (
	"context"
	"fmt"

	"github.com/arenlabs/aren/internal/domain/memory"
)

// SaveMemory inserts a new remembered note for a user.
func (s *Store) SaveMemory(ctx context.Context, req memory.CreateRequest) (*memory.Note, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	const q = `
		INSERT INTO memories (user_id, note, context, expires_at)
		VALUES ($1, $2, NULLIF($3, ''), $4)
		RETURNING id, created_at`

	n := memory.Note{
		UserID:    req.UserID,
		Note:      req.Note,
		Context:   req.Context,
		ExpiresAt: req.ExpiresAt,
	}
	err := s.pool.QueryRow(ctx, q, req.UserID, req.Note, req.Context, req.ExpiresAt).
		Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert memory: %w", err)
	}
	return &n, nil
}

// RecentMemories returns the user's latest unexpired notes, newest first.
func (s *Store) RecentMemories(ctx context.Context, userID int64, limit int) ([]memory.Note, error) {
	const q = `
		SELECT id, user_id, note, COALESCE(context, ''), created_at, expires_at
		FROM memories
		WHERE user_id = $1 AND (expires_at IS NULL OR expires_at > now())
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent memories: %w", err)
	}
	defer rows.Close()

	var notes []memory.Note
	for rows.Next() {
		var n memory.Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.Note, &n.Context, &n.CreatedAt, &n.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
