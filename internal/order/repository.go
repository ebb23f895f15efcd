package order

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wichananm65/storefront/internal/cart"
)

var (
	ErrNotFound     = errors.New("order not found")
	ErrNoItems      = errors.New("no order items")
	ErrInvalidInput = errors.New("invalid order input")
)

// Repository persists orders. Updates touch only the payment and delivery
// fields; everything else is written once by Create.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Order, error)
	MarkPaid(ctx context.Context, id string, result PaymentResult, at time.Time) (*Order, error)
	MarkDelivered(ctx context.Context, id string, at time.Time) (*Order, error)
}

// InMemoryRepository keeps orders in insertion order.
type InMemoryRepository struct {
	mu     sync.RWMutex
	orders []Order
}

func NewInMemoryRepository(seed []Order) *InMemoryRepository {
	r := &InMemoryRepository{orders: make([]Order, 0, len(seed))}
	r.orders = append(r.orders, seed...)
	return r
}

func (r *InMemoryRepository) Create(_ context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, snapshot(*o))
	return nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orders {
		if o.ID == id {
			out := snapshot(o)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *InMemoryRepository) ListByOwner(_ context.Context, ownerID string) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Order, 0)
	for _, o := range r.orders {
		if o.OwnerID == ownerID {
			out = append(out, snapshot(o))
		}
	}
	return out, nil
}

func (r *InMemoryRepository) MarkPaid(_ context.Context, id string, result PaymentResult, at time.Time) (*Order, error) {
	return r.update(id, func(o *Order) {
		o.IsPaid = true
		o.PaidAt = &at
		o.PaymentResult = &result
		o.UpdatedAt = at
	})
}

func (r *InMemoryRepository) MarkDelivered(_ context.Context, id string, at time.Time) (*Order, error) {
	return r.update(id, func(o *Order) {
		o.IsDelivered = true
		o.DeliveredAt = &at
		o.UpdatedAt = at
	})
}

func (r *InMemoryRepository) update(id string, fn func(*Order)) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.orders {
		if r.orders[i].ID == id {
			fn(&r.orders[i])
			out := snapshot(r.orders[i])
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// snapshot copies the item slice so callers cannot mutate stored orders.
func snapshot(o Order) Order {
	items := make([]cart.LineItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	o.Owner = nil
	return o
}
