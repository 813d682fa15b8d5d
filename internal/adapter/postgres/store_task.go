package postgres

import (
	"context"
	"fmt"

	"github.com/arenlabs/aren/internal/domain"
	"github.com/arenlabs/aren/internal/domain/task"
)

// CreateTask inserts a new reminder task for a user.
func (s *Store) CreateTask(ctx context.Context, req task.CreateRequest) (*task.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	const q = `
		INSERT INTO tasks (user_id, description, due_date, priority)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	t := task.Task{
		UserID:      req.UserID,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
	}
	err := s.pool.QueryRow(ctx, q, req.UserID, req.Description, req.DueDate, req.Priority).
		Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return &t, nil
}

// PendingTasks returns the user's open tasks, highest priority first, then
// nearest due date (tasks without a due date last).
func (s *Store) PendingTasks(ctx context.Context, userID int64) ([]task.Task, error) {
	const q = `
		SELECT id, user_id, description, due_date, done, priority, created_at, completed_at
		FROM tasks
		WHERE user_id = $1 AND NOT done
		ORDER BY priority DESC, due_date ASC NULLS LAST, created_at`

	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("pending tasks: %w", err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		var t task.Task
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.Description, &t.DueDate,
			&t.Done, &t.Priority, &t.CreatedAt, &t.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// CompleteTask marks a task done. Completing an already done task is a no-op
// that still succeeds; a missing task returns ErrNotFound.
func (s *Store) CompleteTask(ctx context.Context, id int64) error {
	const q = `
		UPDATE tasks
		SET done = TRUE, completed_at = COALESCE(completed_at, now())
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("complete task %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("complete task %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
