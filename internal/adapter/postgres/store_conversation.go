package postgres

import (
	"context"
	"fmt"

	"github.com/arenlabs/aren/internal/domain/conversation"
	"github.com/arenlabs/aren/internal/port/database"
)

// SaveExchange persists one prompt/response pair. Repeating an identical
// prompt reuses the existing row, and repeating an identical response for
// that prompt bumps its used_count and last_used instead of inserting a
// duplicate. Both upserts run in one transaction.
func (s *Store) SaveExchange(ctx context.Context, userID int64, ex conversation.Exchange) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	var promptID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO prompts (user_id, text, language)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, text) DO UPDATE SET language = EXCLUDED.language
		 RETURNING id`,
		userID, ex.UserInput, ex.Language,
	).Scan(&promptID)
	if err != nil {
		return fmt.Errorf("upsert prompt: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO responses (prompt_id, text)
		 VALUES ($1, $2)
		 ON CONFLICT (prompt_id, text) DO UPDATE
		 SET used_count = responses.used_count + 1, last_used = now()`,
		promptID, ex.Response,
	)
	if err != nil {
		return fmt.Errorf("upsert response: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit exchange: %w", err)
	}
	return nil
}

// RecentExchanges returns the user's latest prompt/response pairs, newest
// first. For prompts with several stored responses the most recently used
// one is returned.
func (s *Store) RecentExchanges(ctx context.Context, userID int64, limit int) ([]conversation.Exchange, error) {
	const q = `
		SELECT DISTINCT ON (p.id) p.text, r.text, p.language, GREATEST(p.created_at, r.last_used)
		FROM prompts p
		JOIN responses r ON r.prompt_id = p.id
		WHERE p.user_id = $1
		ORDER BY p.id DESC, r.last_used DESC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent exchanges: %w", err)
	}
	defer rows.Close()

	var exchanges []conversation.Exchange
	for rows.Next() {
		var ex conversation.Exchange
		if err := rows.Scan(&ex.UserInput, &ex.Response, &ex.Language, &ex.Timestamp); err != nil {
			return nil, fmt.Errorf("scan exchange: %w", err)
		}
		exchanges = append(exchanges, ex)
	}
	return exchanges, rows.Err()
}

// ResponsesForPrompt returns every stored response for the exact prompt text,
// most used first.
func (s *Store) ResponsesForPrompt(ctx context.Context, userID int64, prompt string) ([]database.StoredResponse, error) {
	const q = `
		SELECT r.id, r.text, r.used_count, r.last_used
		FROM responses r
		JOIN prompts p ON p.id = r.prompt_id
		WHERE p.user_id = $1 AND p.text = $2
		ORDER BY r.used_count DESC, r.last_used DESC`

	rows, err := s.pool.Query(ctx, q, userID, prompt)
	if err != nil {
		return nil, fmt.Errorf("responses for prompt: %w", err)
	}
	defer rows.Close()

	var result []database.StoredResponse
	for rows.Next() {
		var r database.StoredResponse
		if err := rows.Scan(&r.ID, &r.Text, &r.UsedCount, &r.LastUsed); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
