package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wichananm65/storefront/internal/cart"
)

const (
	orderColumns = `id, owner_id, items, shipping_address, payment_method, items_price, tax_price, shipping_price, total_price,
		is_paid, paid_at, payment_result, is_delivered, delivered_at, created_at, updated_at`

	insertOrderQuery = `
		INSERT INTO orders (id, owner_id, items, shipping_address, payment_method, items_price, tax_price, shipping_price, total_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
	`
	getOrderQuery    = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	listOrdersQuery  = `SELECT ` + orderColumns + ` FROM orders WHERE owner_id = $1 ORDER BY created_at`
	markPaidQuery    = `UPDATE orders SET is_paid = TRUE, paid_at = $2, payment_result = $3, updated_at = $2 WHERE id = $1 RETURNING ` + orderColumns
	markDeliverQuery = `UPDATE orders SET is_delivered = TRUE, delivered_at = $2, updated_at = $2 WHERE id = $1 RETURNING ` + orderColumns
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

func (r *PostgresRepository) Create(ctx context.Context, o *Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("failed to encode order items: %w", err)
	}
	addr, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to encode shipping address: %w", err)
	}
	_, err = r.db.ExecContext(ctx, insertOrderQuery,
		o.ID, o.OwnerID, items, addr, o.PaymentMethod,
		o.ItemsPrice, o.TaxPrice, o.ShippingPrice, o.TotalPrice, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Order, error) {
	return r.one(r.db.QueryRowContext(ctx, getOrderQuery, id))
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, listOrdersQuery, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	out := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) MarkPaid(ctx context.Context, id string, result PaymentResult, at time.Time) (*Order, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payment result: %w", err)
	}
	return r.one(r.db.QueryRowContext(ctx, markPaidQuery, id, at, raw))
}

func (r *PostgresRepository) MarkDelivered(ctx context.Context, id string, at time.Time) (*Order, error) {
	return r.one(r.db.QueryRowContext(ctx, markDeliverQuery, id, at))
}

func (r *PostgresRepository) one(row rowScanner) (*Order, error) {
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read order: %w", err)
	}
	return &o, nil
}

func scanOrder(scanner rowScanner) (Order, error) {
	var (
		o                   Order
		items, addr, result []byte
		paidAt, deliveredAt sql.NullTime
	)
	err := scanner.Scan(&o.ID, &o.OwnerID, &items, &addr, &o.PaymentMethod,
		&o.ItemsPrice, &o.TaxPrice, &o.ShippingPrice, &o.TotalPrice,
		&o.IsPaid, &paidAt, &result, &o.IsDelivered, &deliveredAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}

	o.Items = []cart.LineItem{}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return Order{}, err
		}
	}
	if len(addr) > 0 {
		if err := json.Unmarshal(addr, &o.ShippingAddress); err != nil {
			return Order{}, err
		}
	}
	if len(result) > 0 {
		o.PaymentResult = new(PaymentResult)
		if err := json.Unmarshal(result, o.PaymentResult); err != nil {
			return Order{}, err
		}
	}
	if paidAt.Valid {
		o.PaidAt = &paidAt.Time
	}
	if deliveredAt.Valid {
		o.DeliveredAt = &deliveredAt.Time
	}
	return o, nil
}
