package order

import (
	"encoding/json"
	"time"

	"github.com/wichananm65/storefront/internal/cart"
	"github.com/wichananm65/storefront/internal/pricing"
)

type ShippingAddress struct {
	Address    string `json:"address" bson:"address"`
	City       string `json:"city" bson:"city"`
	PostalCode string `json:"postalCode" bson:"postalCode"`
	Country    string `json:"country" bson:"country"`
}

// PaymentResult is the confirmation returned by the payment provider.
type PaymentResult struct {
	ID           string `json:"id" bson:"id"`
	Status       string `json:"status" bson:"status"`
	UpdateTime   string `json:"update_time" bson:"update_time"`
	EmailAddress string `json:"email_address" bson:"email_address"`
}

// Owner is the denormalized identity shown with a single order.
type Owner struct {
	ID    string `json:"_id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Order is a purchase snapshot. Items and prices never change after Create;
// only the payment and delivery fields move, and only from false to true.
type Order struct {
	ID              string          `json:"_id" bson:"_id"`
	OwnerID         string          `json:"-" bson:"user"`
	Owner           *Owner          `json:"-" bson:"-"`
	Items           []cart.LineItem `json:"orderItems" bson:"orderItems"`
	ShippingAddress ShippingAddress `json:"shippingAddress" bson:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod" bson:"paymentMethod"`
	ItemsPrice      float64         `json:"itemsPrice" bson:"itemsPrice"`
	TaxPrice        float64         `json:"taxPrice" bson:"taxPrice"`
	ShippingPrice   float64         `json:"shippingPrice" bson:"shippingPrice"`
	TotalPrice      float64         `json:"totalPrice" bson:"totalPrice"`
	IsPaid          bool            `json:"isPaid" bson:"isPaid"`
	PaidAt          *time.Time      `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
	PaymentResult   *PaymentResult  `json:"paymentResult,omitempty" bson:"paymentResult,omitempty"`
	IsDelivered     bool            `json:"isDelivered" bson:"isDelivered"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty" bson:"deliveredAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt" bson:"updatedAt"`
}

// Breakdown returns the submitted price summary.
func (o Order) Breakdown() pricing.Breakdown {
	return pricing.Breakdown{
		ItemsPrice:    o.ItemsPrice,
		TaxPrice:      o.TaxPrice,
		ShippingPrice: o.ShippingPrice,
		TotalPrice:    o.TotalPrice,
	}
}

// MarshalJSON renders "user" as the owner object when it was populated and as
// the bare owner id otherwise.
func (o Order) MarshalJSON() ([]byte, error) {
	type alias Order
	var owner any = o.OwnerID
	if o.Owner != nil {
		owner = o.Owner
	}
	return json.Marshal(struct {
		alias
		User any `json:"user"`
	}{alias(o), owner})
}

func (o *Order) UnmarshalJSON(b []byte) error {
	type alias Order
	aux := struct {
		*alias
		User json.RawMessage `json:"user"`
	}{alias: (*alias)(o)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if len(aux.User) == 0 || string(aux.User) == "null" {
		return nil
	}
	var id string
	if err := json.Unmarshal(aux.User, &id); err == nil {
		o.OwnerID = id
		return nil
	}
	var owner Owner
	if err := json.Unmarshal(aux.User, &owner); err != nil {
		return err
	}
	o.Owner = &owner
	o.OwnerID = owner.ID
	return nil
}
