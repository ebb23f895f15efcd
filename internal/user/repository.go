package user

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrNotFound = errors.New("user not found")

type Repository interface {
	GetByID(ctx context.Context, id string) (User, error)
	// Lookup returns the known users among ids; unknown ids are omitted.
	Lookup(ctx context.Context, ids []string) (map[string]User, error)
	Upsert(ctx context.Context, u User) error
}

type InMemoryRepository struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewInMemoryRepository(seed []User) *InMemoryRepository {
	repo := &InMemoryRepository{users: make(map[string]User, len(seed))}
	for _, u := range seed {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *InMemoryRepository) Lookup(_ context.Context, ids []string) (map[string]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]User, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Upsert(_ context.Context, u User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.UpdatedAt = time.Now().UTC()
	r.users[u.ID] = u
	return nil
}
