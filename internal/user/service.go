package user

import (
	"context"
	"errors"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	if strings.TrimSpace(id) == "" {
		return User{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Lookup(ctx context.Context, ids []string) (map[string]User, error) {
	return s.repo.Lookup(ctx, ids)
}

// Sync records the caller's claims in the directory. A claim missing from the
// token keeps the stored value.
func (s *Service) Sync(ctx context.Context, id Identity) error {
	if id.Name == "" && id.Email == "" {
		return nil
	}
	u := id.Profile()
	if u.Name == "" || u.Email == "" {
		stored, err := s.repo.GetByID(ctx, id.UserID)
		switch {
		case errors.Is(err, ErrNotFound):
		case err != nil:
			return err
		default:
			if u.Name == "" {
				u.Name = stored.Name
			}
			if u.Email == "" {
				u.Email = stored.Email
			}
		}
	}
	return s.repo.Upsert(ctx, u)
}

// Profile returns the directory entry for the caller, falling back to the
// token claims when the caller has never been recorded.
func (s *Service) Profile(ctx context.Context, id Identity) (User, error) {
	u, err := s.repo.GetByID(ctx, id.UserID)
	if errors.Is(err, ErrNotFound) {
		return id.Profile(), nil
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}
