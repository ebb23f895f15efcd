package product

// Product is the catalog record served by the Product Source. Field names follow
// the upstream (dummyjson) contract so responses can be passed through unchanged.
type Product struct {
	ID                 int      `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description,omitempty"`
	Category           string   `json:"category,omitempty"`
	Price              float64  `json:"price"`
	DiscountPercentage float64  `json:"discountPercentage,omitempty"`
	Rating             float64  `json:"rating,omitempty"`
	Stock              int      `json:"stock"`
	Brand              string   `json:"brand,omitempty"`
	Thumbnail          string   `json:"thumbnail,omitempty"`
	Images             []string `json:"images,omitempty"`
}

// ListQuery carries the pass-through pagination of GET /api/products.
type ListQuery struct {
	Limit  int
	Skip   int
	Select string
}

// DefaultLimit matches the upstream default page size.
const DefaultLimit = 30
