package product

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
)

var (
	ErrNotFound     = errors.New("product not found")
	ErrUpstream     = errors.New("product source unavailable")
	ErrMissingQuery = errors.New("please provide a search query")
)

// Source is the read-only product catalog. List-style calls return the upstream
// JSON untouched; single lookups are decoded because the cart snapshots them.
type Source interface {
	Product(ctx context.Context, id string) (Product, error)
	List(ctx context.Context, q ListQuery) (json.RawMessage, error)
	ByCategory(ctx context.Context, category string) (json.RawMessage, error)
	Categories(ctx context.Context) (json.RawMessage, error)
	Search(ctx context.Context, q string) (json.RawMessage, error)
}

// InMemorySource serves a fixed product list. It is used by tests and by the
// memory store driver for local runs without network access.
type InMemorySource struct {
	mu       sync.RWMutex
	products []Product
	// Fail, when set, is returned by every lookup.
	Fail error
}

func NewInMemorySource(seed []Product) *InMemorySource {
	s := &InMemorySource{products: make([]Product, 0, len(seed))}
	s.products = append(s.products, seed...)
	return s
}

func (s *InMemorySource) Product(_ context.Context, id string) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Fail != nil {
		return Product{}, s.Fail
	}
	n, err := strconv.Atoi(id)
	if err != nil {
		return Product{}, ErrNotFound
	}
	for _, p := range s.products {
		if p.ID == n {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

// SetPrice changes a product's price; tests use it to show carts are snapshots.
func (s *InMemorySource) SetPrice(id int, price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products[i].Price = price
		}
	}
}

func (s *InMemorySource) List(_ context.Context, q ListQuery) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	start := min(q.Skip, len(s.products))
	end := min(start+limit, len(s.products))
	return page(s.products[start:end], len(s.products), q.Skip, limit)
}

func (s *InMemorySource) ByCategory(_ context.Context, category string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	out := make([]Product, 0)
	for _, p := range s.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return page(out, len(out), 0, len(out))
}

func (s *InMemorySource) Categories(_ context.Context) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, p := range s.products {
		if _, ok := seen[p.Category]; ok || p.Category == "" {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return json.Marshal(out)
}

func (s *InMemorySource) Search(_ context.Context, q string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	needle := strings.ToLower(q)
	out := make([]Product, 0)
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Title), needle) || strings.Contains(strings.ToLower(p.Description), needle) {
			out = append(out, p)
		}
	}
	return page(out, len(out), 0, len(out))
}

func page(products []Product, total, skip, limit int) (json.RawMessage, error) {
	return json.Marshal(struct {
		Products []Product `json:"products"`
		Total    int       `json:"total"`
		Skip     int       `json:"skip"`
		Limit    int       `json:"limit"`
	}{products, total, skip, limit})
}
