package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/storefront/internal/cart"
	"github.com/wichananm65/storefront/internal/product"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client), mr
}

func sampleCart(owner string) *cart.Cart {
	c := cart.New("c-"+owner, owner, time.Now().UTC())
	c.AddItem(cart.LineItem{ProductID: "1", Name: "Mascara", UnitPrice: 9.99, Quantity: 2})
	return c
}

func TestGet_Hit(t *testing.T) {
	cache, mr := setupTestRedis(t)
	data, _ := json.Marshal(sampleCart("u1"))
	require.NoError(t, mr.Set(cacheKey("u1"), string(data)))

	got, err := cache.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.OwnerID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 19.98, got.TotalPrice)
}

func TestGet_Miss(t *testing.T) {
	cache, _ := setupTestRedis(t)
	got, err := cache.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, cart.ErrCacheMiss)
	assert.Nil(t, got)
}

func TestGet_CorruptEntry(t *testing.T) {
	cache, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(cacheKey("u1"), `{"_id":`))

	_, err := cache.Get(context.Background(), "u1")
	require.ErrorContains(t, err, "unmarshal cart failed")
}

func TestSet_AppliesJitteredTTL(t *testing.T) {
	cache, mr := setupTestRedis(t)
	require.NoError(t, cache.Set(context.Background(), "u1", sampleCart("u1")))

	ttl := mr.TTL(cacheKey("u1"))
	assert.True(t, ttl >= 15*time.Minute, "TTL should be at least base TTL")
	assert.True(t, ttl < 20*time.Minute, "TTL should be below base + max jitter")
}

func TestDelete(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "u1", sampleCart("u1")))
	require.True(t, mr.Exists(cacheKey("u1")))

	require.NoError(t, cache.Delete(ctx, "u1"))
	assert.False(t, mr.Exists(cacheKey("u1")))
	assert.NoError(t, cache.Delete(ctx, "never-set"))
}

func TestCartService_WithRedis(t *testing.T) {
	cache, mr := setupTestRedis(t)
	src := product.NewInMemorySource([]product.Product{{ID: 1, Title: "Mascara", Price: 9.99}})
	svc := cart.NewService(cart.NewInMemoryRepository(nil), src, cart.Options{Cache: cache})
	ctx := context.Background()

	_, err := svc.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("cart:u1"))

	_, err = svc.Add(ctx, "u1", "1", 1)
	require.NoError(t, err)
	assert.False(t, mr.Exists("cart:u1"), "mutation must invalidate the cached cart")
}

func TestCartService_RedisDownStillServes(t *testing.T) {
	cache, mr := setupTestRedis(t)
	mr.Close()
	src := product.NewInMemorySource([]product.Product{{ID: 1, Title: "Mascara", Price: 9.99}})
	svc := cart.NewService(cart.NewInMemoryRepository(nil), src, cart.Options{Cache: cache})

	c, err := svc.Add(context.Background(), "u1", "1", 1)
	require.NoError(t, err)
	assert.Len(t, c.Items, 1)
}
