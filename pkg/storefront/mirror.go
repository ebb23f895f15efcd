package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/wichananm65/storefront/internal/cart"
	"github.com/wichananm65/storefront/internal/order"
	"github.com/wichananm65/storefront/internal/pricing"
	"github.com/wichananm65/storefront/internal/product"
)

var ErrEmptyCart = errors.New("storefront: cart is empty")

// snapshot is the persisted form of the mirror. Synced is false while the
// replica holds guest changes the server has not seen. Replayed holds the
// quantity per product an interrupted Reconcile already pushed.
type snapshot struct {
	Items    []cart.LineItem `json:"items"`
	Synced   bool            `json:"synced"`
	Replayed map[string]int  `json:"replayed,omitempty"`
}

// Mirror is the local replica of the caller's cart. Every mutation is saved
// to storage before it returns, and the same merge and overwrite rules as the
// server cart apply.
type Mirror struct {
	mu       sync.Mutex
	store    Storage
	cart     *cart.Cart
	synced   bool
	replayed map[string]int
}

func NewMirror(store Storage) *Mirror {
	return &Mirror{store: store, cart: cart.New("", "", time.Now())}
}

// Load replaces the replica with what storage holds. A missing key leaves an
// empty cart.
func (m *Mirror) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := m.store.Load(CartKey)
	if err != nil {
		return fmt.Errorf("load %s: %w", CartKey, err)
	}
	m.cart.Clear()
	m.synced = false
	m.replayed = nil
	if len(data) == 0 {
		return nil
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode %s: %w", CartKey, err)
	}
	for _, it := range snap.Items {
		if it.ProductID != "" && it.Quantity > 0 {
			m.cart.AddItem(it)
		}
	}
	m.synced = snap.Synced
	m.replayed = snap.Replayed
	return nil
}

// Items returns a copy of the local lines.
func (m *Mirror) Items() []cart.LineItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]cart.LineItem(nil), m.cart.Items...)
}

func (m *Mirror) Synced() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.synced
}

// LineFromProduct snapshots a catalog product into a cart line.
func LineFromProduct(p product.Product, quantity int) cart.LineItem {
	return cart.LineItem{
		ProductID: strconv.Itoa(p.ID),
		Name:      p.Title,
		Image:     p.Thumbnail,
		UnitPrice: p.Price,
		Quantity:  quantity,
	}
}

func (m *Mirror) Add(item cart.LineItem) error {
	if item.ProductID == "" || item.Quantity < 1 {
		return cart.ErrInvalidInput
	}
	return m.mutate(func(c *cart.Cart) error {
		c.AddItem(item)
		return nil
	})
}

// Update overwrites a line's quantity; quantity <= 0 removes it.
func (m *Mirror) Update(productID string, quantity int) error {
	return m.mutate(func(c *cart.Cart) error {
		return c.SetQuantity(productID, quantity)
	})
}

func (m *Mirror) Remove(productID string) error {
	return m.mutate(func(c *cart.Cart) error {
		c.RemoveItem(productID)
		return nil
	})
}

func (m *Mirror) Clear() error {
	return m.mutate(func(c *cart.Cart) error {
		c.Clear()
		return nil
	})
}

// Prices is the checkout breakdown for the local lines.
func (m *Mirror) Prices() pricing.Breakdown {
	m.mu.Lock()
	defer m.mu.Unlock()
	return pricing.ForLines(m.cart.Lines())
}

// Adopt replaces the replica with a server cart and marks it synced.
func (m *Mirror) Adopt(items []cart.LineItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cart.Clear()
	for _, it := range items {
		m.cart.AddItem(it)
	}
	m.synced = true
	m.replayed = nil
	return m.save()
}

// Reconcile pushes unsynced local lines to the server as adds, so they merge
// with whatever the server cart already holds, and then adopts the server
// cart. Each pushed line is recorded before the next one is sent, so a retry
// after a failure only pushes the rest. A synced replica is only refreshed.
func (m *Mirror) Reconcile(ctx context.Context, client *Client) error {
	if !client.HasToken() {
		return ErrNoToken
	}
	if !m.Synced() {
		for _, it := range m.pending() {
			if _, err := client.AddToCart(ctx, it.ProductID, it.Quantity); err != nil {
				return fmt.Errorf("replay %s: %w", it.ProductID, err)
			}
			if err := m.markReplayed(it.ProductID, it.Quantity); err != nil {
				return err
			}
		}
	}
	server, err := client.Cart(ctx)
	if err != nil {
		return err
	}
	items := make([]cart.LineItem, 0, len(server.Items))
	for _, it := range server.Items {
		items = append(items, it.LineItem)
	}
	return m.Adopt(items)
}

// Checkout places an order for the local lines with the client-side price
// breakdown. On success the server has cleared its cart and so does the
// replica.
func (m *Mirror) Checkout(ctx context.Context, client *Client, addr order.ShippingAddress, paymentMethod string) (*order.Order, error) {
	items := m.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	prices := m.Prices()
	placed, err := client.CreateOrder(ctx, OrderRequest{
		OrderItems:      items,
		ShippingAddress: addr,
		PaymentMethod:   paymentMethod,
		ItemsPrice:      prices.ItemsPrice,
		TaxPrice:        prices.TaxPrice,
		ShippingPrice:   prices.ShippingPrice,
		TotalPrice:      prices.TotalPrice,
	})
	if err != nil {
		return nil, err
	}
	if err := m.Adopt(nil); err != nil {
		return placed, err
	}
	return placed, nil
}

// pending returns, per local line, the quantity Reconcile has not pushed yet.
func (m *Mirror) pending() []cart.LineItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]cart.LineItem, 0, len(m.cart.Items))
	for _, it := range m.cart.Items {
		it.Quantity -= m.replayed[it.ProductID]
		if it.Quantity > 0 {
			out = append(out, it)
		}
	}
	return out
}

func (m *Mirror) markReplayed(productID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.replayed == nil {
		m.replayed = map[string]int{}
	}
	m.replayed[productID] += quantity
	return m.save()
}

func (m *Mirror) mutate(fn func(*cart.Cart) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := fn(m.cart); err != nil {
		return err
	}
	m.synced = false
	return m.save()
}

func (m *Mirror) save() error {
	data, err := json.Marshal(snapshot{Items: m.cart.Items, Synced: m.synced, Replayed: m.replayed})
	if err != nil {
		return err
	}
	if err := m.store.Save(CartKey, data); err != nil {
		return fmt.Errorf("save %s: %w", CartKey, err)
	}
	return nil
}
