package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arenlabs/aren/internal/domain"
	"github.com/arenlabs/aren/internal/domain/user"
)

// Store implements database.Store using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// --- Users ---

// EnsureUser returns the user with the given device ID, creating it on first
// contact. The upsert keeps concurrent first requests from racing.
func (s *Store) EnsureUser(ctx context.Context, deviceID string) (*user.User, error) {
	const q = `
		INSERT INTO users (device_id)
		VALUES ($1)
		ON CONFLICT (device_id) DO UPDATE SET device_id = EXCLUDED.device_id
		RETURNING id, COALESCE(name, ''), COALESCE(email, ''), device_id, created_at`

	var u user.User
	if err := s.pool.QueryRow(ctx, q, deviceID).Scan(
		&u.ID, &u.Name, &u.Email, &u.DeviceID, &u.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("ensure user %s: %w", deviceID, err)
	}
	return &u, nil
}

func (s *Store) GetUserByDevice(ctx context.Context, deviceID string) (*user.User, error) {
	const q = `
		SELECT id, COALESCE(name, ''), COALESCE(email, ''), device_id, created_at
		FROM users WHERE device_id = $1`

	var u user.User
	err := s.pool.QueryRow(ctx, q, deviceID).Scan(
		&u.ID, &u.Name, &u.Email, &u.DeviceID, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get user %s: %w", deviceID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user %s: %w", deviceID, err)
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]user.User, error) {
	const q = `
		SELECT id, COALESCE(name, ''), COALESCE(email, ''), device_id, created_at
		FROM users ORDER BY created_at`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.DeviceID, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
