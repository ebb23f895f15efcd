package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: db.Collection("orders")}
}

func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}
	return nil
}

func (m *MongoRepository) Create(ctx context.Context, o *Order) error {
	if _, err := m.collection.InsertOne(ctx, o); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (m *MongoRepository) GetByID(ctx context.Context, id string) (*Order, error) {
	var o Order
	if err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &o, nil
}

func (m *MongoRepository) ListByOwner(ctx context.Context, ownerID string) ([]Order, error) {
	cur, err := m.collection.Find(ctx, bson.M{"user": ownerID})
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	out := make([]Order, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return out, nil
}

func (m *MongoRepository) MarkPaid(ctx context.Context, id string, result PaymentResult, at time.Time) (*Order, error) {
	return m.set(ctx, id, bson.M{
		"isPaid":        true,
		"paidAt":        at,
		"paymentResult": result,
		"updatedAt":     at,
	})
}

func (m *MongoRepository) MarkDelivered(ctx context.Context, id string, at time.Time) (*Order, error) {
	return m.set(ctx, id, bson.M{
		"isDelivered": true,
		"deliveredAt": at,
		"updatedAt":   at,
	})
}

func (m *MongoRepository) set(ctx context.Context, id string, fields bson.M) (*Order, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var o Order
	err := m.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	return &o, nil
}
