package product

import (
	"context"
	"encoding/json"
	"strings"
)

type Service struct {
	source Source
}

func NewService(source Source) *Service {
	return &Service{source: source}
}

func (s *Service) GetByID(ctx context.Context, id string) (Product, error) {
	if strings.TrimSpace(id) == "" {
		return Product{}, ErrNotFound
	}
	return s.source.Product(ctx, id)
}

func (s *Service) List(ctx context.Context, q ListQuery) (json.RawMessage, error) {
	return s.source.List(ctx, q)
}

func (s *Service) ByCategory(ctx context.Context, category string) (json.RawMessage, error) {
	return s.source.ByCategory(ctx, category)
}

func (s *Service) Categories(ctx context.Context) (json.RawMessage, error) {
	return s.source.Categories(ctx)
}

// Search requires a non-empty query.
func (s *Service) Search(ctx context.Context, q string) (json.RawMessage, error) {
	if strings.TrimSpace(q) == "" {
		return nil, ErrMissingQuery
	}
	return s.source.Search(ctx, q)
}
