package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("cart not found")
	ErrItemNotFound = errors.New("item not found in cart")
	ErrInvalidInput = errors.New("invalid cart input")
)

// Repository stores one cart document per owner. Writes replace the whole
// document; the last writer wins.
type Repository interface {
	// GetOrCreate must be idempotent under concurrent first access.
	GetOrCreate(ctx context.Context, ownerID string) (*Cart, error)
	Get(ctx context.Context, ownerID string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	// Clear empties the items of an existing cart and returns ErrNotFound otherwise.
	Clear(ctx context.Context, ownerID string) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu    sync.RWMutex
	carts map[string]Cart
	now   func() time.Time
}

func NewInMemoryRepository(seed []Cart) *InMemoryRepository {
	r := &InMemoryRepository{carts: make(map[string]Cart, len(seed)), now: time.Now}
	for _, c := range seed {
		r.carts[c.OwnerID] = clone(c)
	}
	return r
}

func (r *InMemoryRepository) GetOrCreate(_ context.Context, ownerID string) (*Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[ownerID]
	if !ok {
		c = *New(uuid.NewString(), ownerID, r.now().UTC())
		r.carts[ownerID] = c
	}
	out := clone(c)
	return &out, nil
}

func (r *InMemoryRepository) Get(_ context.Context, ownerID string) (*Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.carts[ownerID]
	if !ok {
		return nil, ErrNotFound
	}
	out := clone(c)
	return &out, nil
}

func (r *InMemoryRepository) Save(_ context.Context, c *Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.UpdatedAt = r.now().UTC()
	r.carts[c.OwnerID] = clone(*c)
	return nil
}

func (r *InMemoryRepository) Clear(_ context.Context, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[ownerID]
	if !ok {
		return ErrNotFound
	}
	c.Clear()
	c.UpdatedAt = r.now().UTC()
	r.carts[ownerID] = c
	return nil
}

func clone(c Cart) Cart {
	items := make([]LineItem, len(c.Items))
	copy(items, c.Items)
	c.Items = items
	return c
}
