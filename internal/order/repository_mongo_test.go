package order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/wichananm65/storefront/internal/cart"
	mongostore "github.com/wichananm65/storefront/internal/infrastructure/database/mongodb"
)

func setupMongo(t *testing.T) *MongoRepository {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	db, err := mongostore.Connect(ctx, uri, "storefront_test")
	require.NoError(t, err)

	repo := NewMongoRepository(db)
	require.NoError(t, repo.CreateIndexes(ctx))
	return repo
}

func mongoOrder(id, owner string, at time.Time) *Order {
	return &Order{
		ID:      id,
		OwnerID: owner,
		Items: []cart.LineItem{
			{ProductID: "1", Name: "Mascara", UnitPrice: 9.99, Quantity: 2},
		},
		ShippingAddress: ShippingAddress{Address: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"},
		PaymentMethod:   "PayPal",
		ItemsPrice:      19.98,
		TaxPrice:        3,
		ShippingPrice:   10,
		TotalPrice:      32.98,
		CreatedAt:       at,
		UpdatedAt:       at,
	}
}

func TestMongoRepository_StatusUpdatesOnlyTouchStatus(t *testing.T) {
	repo := setupMongo(t)
	ctx := context.Background()
	created := time.Now().UTC().Truncate(time.Millisecond)

	_, err := repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.MarkPaid(ctx, "missing", PaymentResult{ID: "PAY-1"}, created)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.MarkDelivered(ctx, "missing", created)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Create(ctx, mongoOrder("o1", "u1", created)))

	paidAt := created.Add(time.Minute)
	paid, err := repo.MarkPaid(ctx, "o1", PaymentResult{ID: "PAY-1", Status: "COMPLETED", EmailAddress: "a@b.c"}, paidAt)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	require.NotNil(t, paid.PaidAt)
	assert.WithinDuration(t, paidAt, *paid.PaidAt, time.Millisecond)
	assert.Equal(t, "PAY-1", paid.PaymentResult.ID)
	assert.False(t, paid.IsDelivered)

	deliveredAt := paidAt.Add(time.Hour)
	delivered, err := repo.MarkDelivered(ctx, "o1", deliveredAt)
	require.NoError(t, err)
	assert.True(t, delivered.IsDelivered)
	assert.True(t, delivered.IsPaid)

	got, err := repo.GetByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.OwnerID)
	assert.Equal(t, mongoOrder("o1", "u1", created).Items, got.Items)
	assert.Equal(t, 32.98, got.TotalPrice)
	assert.Equal(t, "Springfield", got.ShippingAddress.City)
	assert.WithinDuration(t, created, got.CreatedAt, time.Millisecond)
	assert.WithinDuration(t, deliveredAt, got.UpdatedAt, time.Millisecond)
}

func TestMongoRepository_ListByOwner(t *testing.T) {
	repo := setupMongo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	empty, err := repo.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, repo.Create(ctx, mongoOrder("o1", "u1", now)))
	require.NoError(t, repo.Create(ctx, mongoOrder("o2", "u2", now)))
	require.NoError(t, repo.Create(ctx, mongoOrder("o3", "u1", now.Add(time.Second))))

	mine, err := repo.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	ids := make([]string, 0, len(mine))
	for _, o := range mine {
		ids = append(ids, o.ID)
	}
	assert.ElementsMatch(t, []string{"o1", "o3"}, ids)
}
