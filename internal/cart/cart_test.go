package cart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAddItem_MergesKeepingSnapshot(t *testing.T) {
	c := New("c1", "u1", time.Now())
	c.AddItem(LineItem{ProductID: "1", Name: "Mascara", UnitPrice: 9.99, Quantity: 1})
	c.AddItem(LineItem{ProductID: "1", Name: "Renamed", UnitPrice: 1, Quantity: 2})

	assert.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.Equal(t, "Mascara", c.Items[0].Name)
	assert.Equal(t, 9.99, c.Items[0].UnitPrice)
	assert.Equal(t, 29.97, c.TotalPrice)
}

func TestSetQuantity(t *testing.T) {
	c := New("c1", "u1", time.Now())
	c.AddItem(LineItem{ProductID: "1", UnitPrice: 10, Quantity: 1})
	c.AddItem(LineItem{ProductID: "2", UnitPrice: 5, Quantity: 4})

	assert.NoError(t, c.SetQuantity("1", 5))
	assert.Equal(t, 5, c.Items[0].Quantity)
	assert.Equal(t, 70.0, c.TotalPrice)

	assert.NoError(t, c.SetQuantity("2", 0))
	assert.Len(t, c.Items, 1)
	assert.Equal(t, 50.0, c.TotalPrice)

	assert.ErrorIs(t, c.SetQuantity("9", 1), ErrItemNotFound)
}

func TestRemoveItem_AbsentIsNoop(t *testing.T) {
	c := New("c1", "u1", time.Now())
	c.AddItem(LineItem{ProductID: "1", UnitPrice: 10, Quantity: 2})

	c.RemoveItem("9")
	assert.Len(t, c.Items, 1)

	c.RemoveItem("1")
	assert.Empty(t, c.Items)
	assert.Equal(t, 0.0, c.TotalPrice)
}

func TestClear(t *testing.T) {
	c := New("c1", "u1", time.Now())
	c.AddItem(LineItem{ProductID: "1", UnitPrice: 10, Quantity: 2})
	c.Clear()
	assert.NotNil(t, c.Items)
	assert.Empty(t, c.Items)
	assert.Zero(t, c.TotalPrice)
}

func TestTotal_NoFloatDrift(t *testing.T) {
	c := New("c1", "u1", time.Now())
	c.AddItem(LineItem{ProductID: "1", UnitPrice: 0.1, Quantity: 1})
	c.AddItem(LineItem{ProductID: "2", UnitPrice: 0.2, Quantity: 1})
	assert.Equal(t, 0.3, c.TotalPrice)
}
