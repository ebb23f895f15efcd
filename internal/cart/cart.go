package cart

import (
	"time"

	"github.com/wichananm65/storefront/internal/pricing"
)

// LineItem is one product in a cart. Name, Image and UnitPrice are a snapshot
// taken when the product was first added and never refreshed afterwards.
type LineItem struct {
	ProductID string  `json:"productId" bson:"productId"`
	Name      string  `json:"name" bson:"name"`
	Image     string  `json:"image" bson:"image"`
	UnitPrice float64 `json:"price" bson:"price"`
	Quantity  int     `json:"quantity" bson:"quantity"`
}

type Cart struct {
	ID         string     `json:"_id" bson:"_id"`
	OwnerID    string     `json:"user" bson:"user"`
	Items      []LineItem `json:"items" bson:"items"`
	TotalPrice float64    `json:"totalPrice" bson:"totalPrice"`
	CreatedAt  time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// New returns an empty cart for owner.
func New(id, ownerID string, now time.Time) *Cart {
	return &Cart{ID: id, OwnerID: ownerID, Items: []LineItem{}, CreatedAt: now, UpdatedAt: now}
}

// AddItem merges item into the cart. An existing line keeps its snapshot and
// only accumulates quantity.
func (c *Cart) AddItem(item LineItem) {
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i].Quantity += item.Quantity
			c.recalculate()
			return
		}
	}
	c.Items = append(c.Items, item)
	c.recalculate()
}

// SetQuantity overwrites a line's quantity; quantity <= 0 removes the line.
func (c *Cart) SetQuantity(productID string, quantity int) error {
	for i := range c.Items {
		if c.Items[i].ProductID != productID {
			continue
		}
		if quantity <= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		} else {
			c.Items[i].Quantity = quantity
		}
		c.recalculate()
		return nil
	}
	return ErrItemNotFound
}

// RemoveItem drops the line for productID. A missing line is not an error.
func (c *Cart) RemoveItem(productID string) {
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	c.Items = kept
	c.recalculate()
}

func (c *Cart) Clear() {
	c.Items = []LineItem{}
	c.TotalPrice = 0
}

// Lines adapts the items for the pricing package.
func (c *Cart) Lines() []pricing.Line {
	lines := make([]pricing.Line, 0, len(c.Items))
	for _, it := range c.Items {
		lines = append(lines, pricing.Line{UnitPrice: it.UnitPrice, Quantity: it.Quantity})
	}
	return lines
}

func (c *Cart) recalculate() {
	if c.Items == nil {
		c.Items = []LineItem{}
	}
	c.TotalPrice = pricing.Subtotal(c.Lines())
}
