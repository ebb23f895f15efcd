// Package pricing holds the checkout price formula shared by the cart total and
// the client-side mirror.
package pricing

import "github.com/shopspring/decimal"

var (
	freeShippingOver = decimal.NewFromInt(100)
	flatShipping     = decimal.NewFromInt(10)
	taxRate          = decimal.RequireFromString("0.15")
)

// Line is one priced quantity.
type Line struct {
	UnitPrice float64
	Quantity  int
}

// Breakdown is the price summary submitted with an order.
type Breakdown struct {
	ItemsPrice    float64 `json:"itemsPrice"`
	TaxPrice      float64 `json:"taxPrice"`
	ShippingPrice float64 `json:"shippingPrice"`
	TotalPrice    float64 `json:"totalPrice"`
}

// Subtotal returns Σ unitPrice × quantity rounded to cents.
func Subtotal(lines []Line) float64 {
	return subtotal(lines).Round(2).InexactFloat64()
}

// subtotal is the unrounded line sum.
func subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(decimal.NewFromFloat(l.UnitPrice).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

// Compute derives shipping, tax and total from an items price. The free
// shipping threshold is checked on the unrounded amount.
func Compute(itemsPrice float64) Breakdown {
	return compute(decimal.NewFromFloat(itemsPrice))
}

// ForLines prices the unrounded sum of lines.
func ForLines(lines []Line) Breakdown {
	return compute(subtotal(lines))
}

func compute(raw decimal.Decimal) Breakdown {
	shipping := flatShipping
	if raw.GreaterThan(freeShippingOver) {
		shipping = decimal.Zero
	}
	items := raw.Round(2)
	tax := items.Mul(taxRate).Round(2)
	total := items.Add(shipping).Add(tax).Round(2)

	return Breakdown{
		ItemsPrice:    items.InexactFloat64(),
		TaxPrice:      tax.InexactFloat64(),
		ShippingPrice: shipping.InexactFloat64(),
		TotalPrice:    total.InexactFloat64(),
	}
}
