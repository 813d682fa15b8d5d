package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/arenlabs/aren/internal/domain"
	"github.com/arenlabs/aren/internal/domain/systeminfo"
)

// UpsertFact inserts or updates an identity fact by key.
func (s *Store) UpsertFact(ctx context.Context, fact systeminfo.Fact) error {
	const q = `
		INSERT INTO system_info (key, value, category)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, category = EXCLUDED.category, updated_at = now()`

	if _, err := s.pool.Exec(ctx, q, fact.Key, fact.Value, fact.Category); err != nil {
		return fmt.Errorf("upsert fact %s: %w", fact.Key, err)
	}
	return nil
}

// GetFact returns a single identity fact by key.
func (s *Store) GetFact(ctx context.Context, key string) (*systeminfo.Fact, error) {
	const q = `
		SELECT key, value, category, created_at, updated_at
		FROM system_info WHERE key = $1`

	var f systeminfo.Fact
	err := s.pool.QueryRow(ctx, q, key).Scan(
		&f.Key, &f.Value, &f.Category, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get fact %s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get fact %s: %w", key, err)
	}
	return &f, nil
}

// ListFacts returns identity facts, optionally filtered by category.
// An empty category returns everything.
func (s *Store) ListFacts(ctx context.Context, category string) ([]systeminfo.Fact, error) {
	const q = `
		SELECT key, value, category, created_at, updated_at
		FROM system_info
		WHERE $1 = '' OR category = $1
		ORDER BY key`

	rows, err := s.pool.Query(ctx, q, category)
	if err != nil {
		return nil, fmt.Errorf("list facts: %w", err)
	}
	defer rows.Close()

	var facts []systeminfo.Fact
	for rows.Next() {
		var f systeminfo.Fact
		if err := rows.Scan(&f.Key, &f.Value, &f.Category, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan fact: %w", err)
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}
