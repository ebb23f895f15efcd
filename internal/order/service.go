package order

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wichananm65/storefront/internal/cart"
	"github.com/wichananm65/storefront/internal/user"
)

// CartClearer empties the owner's cart after checkout.
type CartClearer interface {
	Clear(ctx context.Context, ownerID string) error
}

// Directory resolves and records owner identities.
type Directory interface {
	Lookup(ctx context.Context, ids []string) (map[string]user.User, error)
	Sync(ctx context.Context, id user.Identity) error
}

// CreateInput is a checkout submission. Prices are trusted as submitted.
type CreateInput struct {
	Items           []cart.LineItem
	ShippingAddress ShippingAddress
	PaymentMethod   string
	ItemsPrice      float64
	TaxPrice        float64
	ShippingPrice   float64
	TotalPrice      float64
}

type Options struct {
	Publisher     Publisher
	OrdersCreated prometheus.Counter
	Logger        *slog.Logger
	Now           func() time.Time
}

// Service provides business logic for orders.
type Service struct {
	repo      Repository
	carts     CartClearer
	directory Directory
	publisher Publisher
	created   prometheus.Counter
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, carts CartClearer, directory Directory, opts Options) *Service {
	s := &Service{
		repo:      repo,
		carts:     carts,
		directory: directory,
		publisher: opts.Publisher,
		created:   opts.OrdersCreated,
		logger:    opts.Logger,
		now:       opts.Now,
	}
	if s.publisher == nil {
		s.publisher = nopPublisher{}
	}
	if s.created == nil {
		s.created = prometheus.NewCounter(prometheus.CounterOpts{Name: "orders_created_total"})
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Create persists the order and then clears the caller's cart. The clear and
// the follow-up notifications are best effort: failures are logged and the
// order is still returned.
func (s *Service) Create(ctx context.Context, caller user.Identity, in CreateInput) (*Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrNoItems
	}
	for _, it := range in.Items {
		if strings.TrimSpace(it.ProductID) == "" || it.Quantity < 1 {
			return nil, ErrInvalidInput
		}
	}

	now := s.now().UTC()
	items := make([]cart.LineItem, len(in.Items))
	copy(items, in.Items)
	o := &Order{
		ID:              uuid.NewString(),
		OwnerID:         caller.UserID,
		Items:           items,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		ItemsPrice:      in.ItemsPrice,
		TaxPrice:        in.TaxPrice,
		ShippingPrice:   in.ShippingPrice,
		TotalPrice:      in.TotalPrice,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	s.created.Inc()

	if err := s.carts.Clear(ctx, caller.UserID); err != nil && !errors.Is(err, cart.ErrNotFound) {
		s.logger.Warn("cart clear after checkout failed",
			slog.String("order", o.ID), slog.String("owner", caller.UserID), slog.Any("err", err))
	}
	if s.directory != nil {
		if err := s.directory.Sync(ctx, caller); err != nil {
			s.logger.Warn("user directory sync failed", slog.String("owner", caller.UserID), slog.Any("err", err))
		}
	}
	s.publish(ctx, EventCreated, o)
	return o, nil
}

// Get returns the order with its owner populated. Orders owned by someone
// else are reported as missing unless the caller is an admin.
func (s *Service) Get(ctx context.Context, caller user.Identity, id string) (*Order, error) {
	o, err := s.visible(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	s.populate(ctx, o)
	return o, nil
}

func (s *Service) ListMine(ctx context.Context, ownerID string) ([]Order, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// MarkPaid records the payment confirmation. Repeated calls overwrite paidAt
// and the payment result.
func (s *Service) MarkPaid(ctx context.Context, caller user.Identity, id string, result PaymentResult) (*Order, error) {
	if _, err := s.visible(ctx, caller, id); err != nil {
		return nil, err
	}
	o, err := s.repo.MarkPaid(ctx, id, result, s.now().UTC())
	if err != nil {
		return nil, err
	}
	s.publish(ctx, EventPaid, o)
	return o, nil
}

// MarkDelivered does not require the order to be paid. Admin checks happen
// in the HTTP layer.
func (s *Service) MarkDelivered(ctx context.Context, id string) (*Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	o, err := s.repo.MarkDelivered(ctx, id, s.now().UTC())
	if err != nil {
		return nil, err
	}
	s.publish(ctx, EventDelivered, o)
	return o, nil
}

func (s *Service) visible(ctx context.Context, caller user.Identity, id string) (*Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.OwnerID != caller.UserID && !caller.IsAdmin {
		return nil, ErrNotFound
	}
	return o, nil
}

func (s *Service) populate(ctx context.Context, orders ...*Order) {
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		o.Owner = &Owner{ID: o.OwnerID}
		ids = append(ids, o.OwnerID)
	}
	if s.directory == nil {
		return
	}
	users, err := s.directory.Lookup(ctx, ids)
	if err != nil {
		s.logger.Warn("user directory lookup failed", slog.Any("err", err))
		return
	}
	for _, o := range orders {
		if u, ok := users[o.OwnerID]; ok {
			o.Owner.Name = u.Name
			o.Owner.Email = u.Email
		}
	}
}

func (s *Service) publish(ctx context.Context, kind string, o *Order) {
	if err := s.publisher.Publish(ctx, newEvent(kind, o, s.now().UTC())); err != nil {
		s.logger.Warn("order event publish failed",
			slog.String("type", kind), slog.String("order", o.ID), slog.Any("err", err))
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }
