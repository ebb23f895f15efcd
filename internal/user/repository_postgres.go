package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

const (
	getUserByIDQuery = `SELECT id, name, email, is_admin, updated_at FROM users WHERE id = $1`
	lookupUsersQuery = `SELECT id, name, email, is_admin, updated_at FROM users WHERE id = ANY($1::text[])`
	upsertUserQuery  = `
		INSERT INTO users (id, name, email, is_admin, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, email = EXCLUDED.email, is_admin = EXCLUDED.is_admin, updated_at = EXCLUDED.updated_at
	`
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, getUserByIDQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) Lookup(ctx context.Context, ids []string) (map[string]User, error) {
	out := make(map[string]User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx, lookupUsersQuery, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to look up users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		out[u.ID] = u
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Upsert(ctx context.Context, u User) error {
	if _, err := r.db.ExecContext(ctx, upsertUserQuery, u.ID, u.Name, u.Email, u.IsAdmin, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func scanUser(scanner rowScanner) (User, error) {
	var u User
	err := scanner.Scan(&u.ID, &u.Name, &u.Email, &u.IsAdmin, &u.UpdatedAt)
	return u, err
}
