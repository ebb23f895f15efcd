package category

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/storefront/internal/product"
)

func makeApp() *fiber.App {
	src := product.NewInMemorySource([]product.Product{
		{ID: 1, Title: "Essence Mascara", Category: "beauty", Price: 9.99},
		{ID: 2, Title: "CK One", Category: "fragrances", Price: 49.99},
		{ID: 3, Title: "Red Lipstick", Category: "beauty", Price: 12.99},
	})
	app := fiber.New()
	api := app.Group("/api")
	NewHandler(NewService(src)).RegisterPublicRoutes(api)
	product.NewHandler(product.NewService(src)).RegisterPublicRoutes(api)
	return app
}

func TestGetCategories(t *testing.T) {
	app := makeApp()
	res, err := app.Test(httptest.NewRequest("GET", "/api/products/categories", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var got []string
	if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0] != "beauty" || got[1] != "fragrances" {
		t.Fatalf("unexpected categories %v", got)
	}
}

// The category routes share the /products prefix with /products/:id and must win.
func TestGetByCategory_NotShadowedByID(t *testing.T) {
	app := makeApp()
	res, _ := app.Test(httptest.NewRequest("GET", "/api/products/category/beauty", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var body struct {
		Products []product.Product `json:"products"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Products) != 2 {
		t.Fatalf("expected 2 beauty products, got %d", len(body.Products))
	}
}

func TestGetByCategory_Unknown(t *testing.T) {
	app := makeApp()
	res, _ := app.Test(httptest.NewRequest("GET", "/api/products/category/garden", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 with empty page, got %d", res.StatusCode)
	}
}
