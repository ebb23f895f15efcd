package category

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/wichananm65/storefront/internal/product"
)

// Service provides the category views of the catalog.
type Service struct {
	catalog Catalog
}

func NewService(c Catalog) *Service {
	return &Service{catalog: c}
}

func (s *Service) List(ctx context.Context) (json.RawMessage, error) {
	return s.catalog.Categories(ctx)
}

// Products returns the upstream product page for one category.
func (s *Service) Products(ctx context.Context, category string) (json.RawMessage, error) {
	if strings.TrimSpace(category) == "" {
		return nil, product.ErrNotFound
	}
	return s.catalog.ByCategory(ctx, category)
}
