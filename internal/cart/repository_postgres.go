package cart

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	upsertCartQuery = `
		INSERT INTO carts (owner_id, id, items, total_price, created_at, updated_at)
		VALUES ($1, $2, '[]', 0, $3, $3)
		ON CONFLICT (owner_id) DO NOTHING
	`
	getCartQuery = `
		SELECT id, owner_id, items, total_price, created_at, updated_at
		FROM carts
		WHERE owner_id = $1
	`
	saveCartQuery = `
		INSERT INTO carts (owner_id, id, items, total_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (owner_id) DO UPDATE
		SET items = EXCLUDED.items, total_price = EXCLUDED.total_price, updated_at = EXCLUDED.updated_at
	`
	clearCartQuery = `UPDATE carts SET items = '[]', total_price = 0, updated_at = $2 WHERE owner_id = $1`
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetOrCreate(ctx context.Context, ownerID string) (*Cart, error) {
	if _, err := r.db.ExecContext(ctx, upsertCartQuery, ownerID, uuid.NewString(), time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return r.Get(ctx, ownerID)
}

func (r *PostgresRepository) Get(ctx context.Context, ownerID string) (*Cart, error) {
	var (
		c   Cart
		raw []byte
	)
	err := r.db.QueryRowContext(ctx, getCartQuery, ownerID).Scan(&c.ID, &c.OwnerID, &raw, &c.TotalPrice, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	c.Items = []LineItem{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &c.Items); err != nil {
			return nil, fmt.Errorf("failed to decode cart items: %w", err)
		}
	}
	return &c, nil
}

func (r *PostgresRepository) Save(ctx context.Context, c *Cart) error {
	items := c.Items
	if items == nil {
		items = []LineItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart items: %w", err)
	}
	c.UpdatedAt = time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = c.UpdatedAt
	}
	if _, err := r.db.ExecContext(ctx, saveCartQuery, c.OwnerID, c.ID, raw, c.TotalPrice, c.CreatedAt, c.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Clear(ctx context.Context, ownerID string) error {
	res, err := r.db.ExecContext(ctx, clearCartQuery, ownerID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
