package order

import (
	"context"
	"time"
)

const (
	EventCreated   = "order.created"
	EventPaid      = "order.paid"
	EventDelivered = "order.delivered"
)

// Event is the notification emitted on each order transition.
type Event struct {
	Type       string    `json:"type"`
	OrderID    string    `json:"orderId"`
	OwnerID    string    `json:"userId"`
	TotalPrice float64   `json:"totalPrice"`
	ItemCount  int       `json:"itemCount"`
	OccurredAt time.Time `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

func newEvent(kind string, o *Order, at time.Time) Event {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return Event{
		Type:       kind,
		OrderID:    o.ID,
		OwnerID:    o.OwnerID,
		TotalPrice: o.TotalPrice,
		ItemCount:  n,
		OccurredAt: at,
	}
}
