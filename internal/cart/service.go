package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/wichananm65/storefront/internal/product"
)

// ProductLookup resolves a product id against the catalog.
type ProductLookup interface {
	Product(ctx context.Context, id string) (product.Product, error)
}

// HydratedItem is a line item enriched with the live catalog entry.
// ProductDetails is nil when the lookup failed.
type HydratedItem struct {
	LineItem
	ProductDetails *product.Product `json:"productDetails"`
}

// HydratedCart is the GET /api/cart response.
type HydratedCart struct {
	ID         string         `json:"_id"`
	OwnerID    string         `json:"user"`
	Items      []HydratedItem `json:"items"`
	TotalPrice float64        `json:"totalPrice"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

type Options struct {
	Cache Cache
	// HydrationLimit bounds concurrent catalog lookups per request.
	HydrationLimit    int
	HydrationFailures prometheus.Counter
	Logger            *slog.Logger
}

// Service orchestrates cart operations.
type Service struct {
	repo     Repository
	products ProductLookup
	cache    Cache
	sfg      singleflight.Group
	// writes counts saves and clears; a cache fill that overlaps one is dropped
	writes   atomic.Uint64
	limit    int
	failures prometheus.Counter
	logger   *slog.Logger
}

func NewService(repo Repository, products ProductLookup, opts Options) *Service {
	s := &Service{
		repo:     repo,
		products: products,
		cache:    opts.Cache,
		limit:    opts.HydrationLimit,
		failures: opts.HydrationFailures,
		logger:   opts.Logger,
	}
	if s.cache == nil {
		s.cache = NopCache{}
	}
	if s.limit <= 0 {
		s.limit = 8
	}
	if s.failures == nil {
		s.failures = prometheus.NewCounter(prometheus.CounterOpts{Name: "cart_hydration_failures_total"})
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// sharedLoadTimeout bounds a collapsed cache miss. It runs detached from the
// leader's context so one cancelled request does not fail the others.
const sharedLoadTimeout = 5 * time.Second

// GetOrCreate returns the owner's cart, creating an empty one on first access.
// Concurrent misses for the same owner share one repository call.
func (s *Service) GetOrCreate(ctx context.Context, ownerID string) (*Cart, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrInvalidInput
	}
	v, err, _ := s.sfg.Do(ownerID, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLoadTimeout)
		defer cancel()
		return s.load(ctx, ownerID)
	})
	if err != nil {
		return nil, err
	}
	// callers mutate the result; never hand out the shared value
	out := clone(*v.(*Cart))
	return &out, nil
}

func (s *Service) load(ctx context.Context, ownerID string) (*Cart, error) {
	c, err := s.cache.Get(ctx, ownerID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		s.logger.Warn("cart cache get failed", slog.String("owner", ownerID), slog.Any("err", err))
	}

	gen := s.writes.Load()
	c, err = s.repo.GetOrCreate(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	s.fill(ctx, ownerID, c, gen)
	return c, nil
}

// fill caches c unless a write happened after gen was taken. The second check
// catches a write whose Delete ran before our Set.
func (s *Service) fill(ctx context.Context, ownerID string, c *Cart, gen uint64) {
	if s.writes.Load() != gen {
		return
	}
	if err := s.cache.Set(ctx, ownerID, c); err != nil {
		s.logger.Warn("cart cache set failed", slog.String("owner", ownerID), slog.Any("err", err))
		return
	}
	if s.writes.Load() != gen {
		s.invalidate(ownerID)
	}
}

// Hydrated returns the cart with each line enriched from the catalog. Lookup
// failures degrade that line to a nil ProductDetails and never fail the call.
func (s *Service) Hydrated(ctx context.Context, ownerID string) (*HydratedCart, error) {
	c, err := s.GetOrCreate(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	items := make([]HydratedItem, len(c.Items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)
	for i, it := range c.Items {
		items[i] = HydratedItem{LineItem: it}
		g.Go(func() error {
			p, err := s.products.Product(gctx, it.ProductID)
			if err != nil {
				s.failures.Inc()
				s.logger.Warn("cart hydration failed", slog.String("productId", it.ProductID), slog.Any("err", err))
				return nil
			}
			items[i].ProductDetails = &p
			return nil
		})
	}
	_ = g.Wait()

	return &HydratedCart{
		ID:         c.ID,
		OwnerID:    c.OwnerID,
		Items:      items,
		TotalPrice: c.TotalPrice,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}, nil
}

// Add snapshots the product into the owner's cart, merging with an existing line.
func (s *Service) Add(ctx context.Context, ownerID, productID string, quantity int) (*Cart, error) {
	if strings.TrimSpace(ownerID) == "" || strings.TrimSpace(productID) == "" || quantity < 1 {
		return nil, ErrInvalidInput
	}
	p, err := s.products.Product(ctx, productID)
	if err != nil {
		return nil, err
	}
	// writes always start from the stored document, never from the cache
	c, err := s.repo.GetOrCreate(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	c.AddItem(LineItem{
		ProductID: productID,
		Name:      p.Title,
		Image:     p.Thumbnail,
		UnitPrice: p.Price,
		Quantity:  quantity,
	})
	return s.save(ctx, c)
}

// Update sets an absolute quantity; quantity <= 0 removes the line.
func (s *Service) Update(ctx context.Context, ownerID, productID string, quantity int) (*Cart, error) {
	c, err := s.repo.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := c.SetQuantity(productID, quantity); err != nil {
		return nil, err
	}
	return s.save(ctx, c)
}

func (s *Service) Remove(ctx context.Context, ownerID, productID string) (*Cart, error) {
	c, err := s.repo.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	c.RemoveItem(productID)
	return s.save(ctx, c)
}

// Clear empties the owner's cart. It returns ErrNotFound when the owner never had one.
func (s *Service) Clear(ctx context.Context, ownerID string) error {
	if err := s.repo.Clear(ctx, ownerID); err != nil {
		return err
	}
	s.invalidate(ownerID)
	return nil
}

func (s *Service) save(ctx context.Context, c *Cart) (*Cart, error) {
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	s.invalidate(c.OwnerID)
	return c, nil
}

func (s *Service) invalidate(ownerID string) {
	s.writes.Add(1)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, ownerID); err != nil {
		s.logger.Warn("cart cache invalidate failed", slog.String("owner", ownerID), slog.Any("err", err))
	}
}
