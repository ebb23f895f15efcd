package pricing

import "testing"

func TestForLines_SmallCartPaysShipping(t *testing.T) {
	got := ForLines([]Line{{UnitPrice: 10, Quantity: 2}, {UnitPrice: 25, Quantity: 1}})
	want := Breakdown{ItemsPrice: 45, ShippingPrice: 10, TaxPrice: 6.75, TotalPrice: 61.75}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestCompute_FreeShippingOverHundred(t *testing.T) {
	got := Compute(150)
	want := Breakdown{ItemsPrice: 150, ShippingPrice: 0, TaxPrice: 22.5, TotalPrice: 172.5}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestCompute_ExactlyHundredStillPaysShipping(t *testing.T) {
	got := Compute(100)
	if got.ShippingPrice != 10 {
		t.Fatalf("shipping at 100 should be 10, got %v", got.ShippingPrice)
	}
	if got.TotalPrice != 125 {
		t.Fatalf("total = %v, want 125", got.TotalPrice)
	}
}

func TestCompute_TaxRoundsToCents(t *testing.T) {
	// 0.15 * 9.99 = 1.4985
	got := Compute(9.99)
	if got.TaxPrice != 1.5 {
		t.Fatalf("tax = %v, want 1.5", got.TaxPrice)
	}
	if got.TotalPrice != 21.49 {
		t.Fatalf("total = %v, want 21.49", got.TotalPrice)
	}
}

func TestSubtotal_AvoidsFloatDrift(t *testing.T) {
	lines := []Line{{UnitPrice: 0.1, Quantity: 1}, {UnitPrice: 0.2, Quantity: 1}}
	if got := Subtotal(lines); got != 0.3 {
		t.Fatalf("subtotal = %v, want 0.3", got)
	}
	if got := Subtotal(nil); got != 0 {
		t.Fatalf("empty subtotal = %v", got)
	}
}

func TestCompute_ThresholdUsesUnroundedAmount(t *testing.T) {
	got := Compute(100.004)
	want := Breakdown{ItemsPrice: 100, ShippingPrice: 0, TaxPrice: 15, TotalPrice: 115}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}
