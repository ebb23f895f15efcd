package cart

import (
	"context"
	"errors"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache is a read-through cache of owner carts. Implementations return
// ErrCacheMiss when the owner has no entry.
type Cache interface {
	Get(ctx context.Context, ownerID string) (*Cart, error)
	Set(ctx context.Context, ownerID string, c *Cart) error
	Delete(ctx context.Context, ownerID string) error
}

// NopCache is used when no cache backend is configured.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (*Cart, error) { return nil, ErrCacheMiss }
func (NopCache) Set(context.Context, string, *Cart) error { return nil }
func (NopCache) Delete(context.Context, string) error { return nil }
