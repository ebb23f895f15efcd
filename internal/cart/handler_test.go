package cart

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/wichananm65/storefront/internal/product"
)

func makeAppWithCartHandler(cHandler *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"user_id": v}})
		}
		return c.Next()
	})
	cHandler.RegisterProtectedRoutes(app.Group("/api"))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body, userID string) (int, string) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	b, _ := io.ReadAll(res.Body)
	return res.StatusCode, string(b)
}

func newCartApp() *fiber.App {
	svc := NewService(NewInMemoryRepository(nil), product.NewInMemorySource(catalog), Options{})
	return makeAppWithCartHandler(NewHandler(svc))
}

func TestCartRoutes_Registered(t *testing.T) {
	app := newCartApp()
	routes := map[string]bool{}
	for _, grp := range app.Stack() {
		for _, r := range grp {
			routes[r.Method+" "+r.Path] = true
		}
	}
	for _, want := range []string{"GET /api/cart", "POST /api/cart", "DELETE /api/cart", "PUT /api/cart/:id", "DELETE /api/cart/:id"} {
		if !routes[want] {
			t.Fatalf("expected route %q to be registered", want)
		}
	}
}

func TestCartRoutes_RequireToken(t *testing.T) {
	app := newCartApp()
	if code, _ := doJSON(t, app, "GET", "/api/cart", "", ""); code != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthenticated GET, got %d", code)
	}
	if code, _ := doJSON(t, app, "POST", "/api/cart", `{"productId":1}`, ""); code != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthenticated POST, got %d", code)
	}
}

func TestCartRoutes_Lifecycle(t *testing.T) {
	app := newCartApp()

	// first GET creates an empty cart
	code, body := doJSON(t, app, "GET", "/api/cart", "", "u1")
	if code != fiber.StatusOK {
		t.Fatalf("expected 200 for GET, got %d", code)
	}
	if !strings.Contains(body, `"items":[]`) {
		t.Fatalf("expected empty items, got %s", body)
	}

	// quantity defaults to 1
	code, body = doJSON(t, app, "POST", "/api/cart", `{"productId":1}`, "u1")
	if code != fiber.StatusCreated {
		t.Fatalf("expected 201 for add, got %d: %s", code, body)
	}
	var c Cart
	if err := json.Unmarshal([]byte(body), &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(c.Items) != 1 || c.Items[0].Quantity != 1 || c.Items[0].Name != "Essence Mascara" {
		t.Fatalf("unexpected cart after add %+v", c)
	}

	code, body = doJSON(t, app, "POST", "/api/cart", `{"productId":"1","quantity":2}`, "u1")
	if code != fiber.StatusCreated || !strings.Contains(body, `"quantity":3`) {
		t.Fatalf("expected merged quantity 3, got %d %s", code, body)
	}

	code, body = doJSON(t, app, "PUT", "/api/cart/1", `{"quantity":5}`, "u1")
	if code != fiber.StatusOK || !strings.Contains(body, `"quantity":5`) {
		t.Fatalf("expected quantity 5, got %d %s", code, body)
	}
	if !strings.Contains(body, `"totalPrice":49.95`) {
		t.Fatalf("expected total 49.95, got %s", body)
	}

	code, body = doJSON(t, app, "GET", "/api/cart", "", "u1")
	if code != fiber.StatusOK || !strings.Contains(body, `"productDetails":{`) {
		t.Fatalf("expected hydrated line, got %d %s", code, body)
	}

	code, body = doJSON(t, app, "DELETE", "/api/cart/1", "", "u1")
	if code != fiber.StatusOK || !strings.Contains(body, `"items":[]`) {
		t.Fatalf("expected empty cart after remove, got %d %s", code, body)
	}

	code, body = doJSON(t, app, "DELETE", "/api/cart", "", "u1")
	if code != fiber.StatusOK || !strings.Contains(body, "Cart cleared") {
		t.Fatalf("expected cleared message, got %d %s", code, body)
	}
}

func TestCartRoutes_Errors(t *testing.T) {
	app := newCartApp()

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown product", "POST", "/api/cart", `{"productId":99}`, fiber.StatusNotFound},
		{"zero quantity", "POST", "/api/cart", `{"productId":1,"quantity":0}`, fiber.StatusBadRequest},
		{"missing product id", "POST", "/api/cart", `{"quantity":1}`, fiber.StatusBadRequest},
		{"update without cart", "PUT", "/api/cart/1", `{"quantity":1}`, fiber.StatusNotFound},
		{"remove without cart", "DELETE", "/api/cart/1", "", fiber.StatusNotFound},
		{"clear without cart", "DELETE", "/api/cart", "", fiber.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if code, body := doJSON(t, app, tc.method, tc.path, tc.body, "fresh-user"); code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, code, body)
			}
		})
	}

	doJSON(t, app, "POST", "/api/cart", `{"productId":1}`, "u2")
	if code, _ := doJSON(t, app, "PUT", "/api/cart/2", `{"quantity":1}`, "u2"); code != fiber.StatusNotFound {
		t.Fatalf("expected 404 for absent line, got %d", code)
	}
	if code, _ := doJSON(t, app, "PUT", "/api/cart/1", `{}`, "u2"); code != fiber.StatusBadRequest {
		t.Fatalf("expected 400 without quantity, got %d", code)
	}
}
