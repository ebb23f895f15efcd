package category

import (
	"context"
	"encoding/json"
)

// Catalog is the slice of the product source the category routes need.
// *product.Client and *product.InMemorySource both satisfy it.
type Catalog interface {
	Categories(ctx context.Context) (json.RawMessage, error)
	ByCategory(ctx context.Context, category string) (json.RawMessage, error)
}
