package user

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
	return &MongoRepository{collection: db.Collection("users")}
}

func (m *MongoRepository) GetByID(ctx context.Context, id string) (User, error) {
	var u User
	if err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (m *MongoRepository) Lookup(ctx context.Context, ids []string) (map[string]User, error) {
	out := make(map[string]User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := m.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to look up users: %w", err)
	}
	var users []User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (m *MongoRepository) Upsert(ctx context.Context, u User) error {
	update := bson.M{"$set": bson.M{
		"name":      u.Name,
		"email":     u.Email,
		"isAdmin":   u.IsAdmin,
		"updatedAt": time.Now().UTC(),
	}}
	if _, err := m.collection.UpdateByID(ctx, u.ID, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}
