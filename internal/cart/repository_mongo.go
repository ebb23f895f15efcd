package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: db.Collection("carts")}
}

// CreateIndexes enforces one cart per owner, which makes the upsert in
// GetOrCreate safe under concurrent first access.
func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create cart indexes: %w", err)
	}
	return nil
}

func (m *MongoRepository) GetOrCreate(ctx context.Context, ownerID string) (*Cart, error) {
	now := time.Now().UTC()
	filter := bson.M{"user": ownerID}
	update := bson.M{"$setOnInsert": bson.M{
		"_id":        uuid.NewString(),
		"user":       ownerID,
		"items":      bson.A{},
		"totalPrice": 0.0,
		"createdAt":  now,
		"updatedAt":  now,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var c Cart
	err := m.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&c)
	if mongo.IsDuplicateKeyError(err) {
		// lost the insert race; the winner's document is there now
		return m.Get(ctx, ownerID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get or create cart: %w", err)
	}
	if c.Items == nil {
		c.Items = []LineItem{}
	}
	return &c, nil
}

func (m *MongoRepository) Get(ctx context.Context, ownerID string) (*Cart, error) {
	var c Cart
	err := m.collection.FindOne(ctx, bson.M{"user": ownerID}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if c.Items == nil {
		c.Items = []LineItem{}
	}
	return &c, nil
}

func (m *MongoRepository) Save(ctx context.Context, c *Cart) error {
	c.UpdatedAt = time.Now().UTC()
	_, err := m.collection.ReplaceOne(ctx, bson.M{"user": c.OwnerID}, c, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (m *MongoRepository) Clear(ctx context.Context, ownerID string) error {
	update := bson.M{"$set": bson.M{
		"items":      bson.A{},
		"totalPrice": 0.0,
		"updatedAt":  time.Now().UTC(),
	}}
	res, err := m.collection.UpdateOne(ctx, bson.M{"user": ownerID}, update)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
