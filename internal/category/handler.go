package category

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/storefront/internal/product"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

// RegisterPublicRoutes must run before the product handler registers /products/:id.
func (h *Handler) RegisterPublicRoutes(router fiber.Router) {
	router.Get("/products/categories", h.getCategories)
	router.Get("/products/category/:category", h.getByCategory)
}

func (h *Handler) getCategories(c *fiber.Ctx) error {
	raw, err := h.service.List(c.UserContext())
	if err != nil {
		return product.WriteError(c, err)
	}
	return product.SendRaw(c, raw)
}

func (h *Handler) getByCategory(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("category"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid category"})
	}
	raw, err := h.service.Products(c.UserContext(), name)
	if err != nil {
		return product.WriteError(c, err)
	}
	return product.SendRaw(c, raw)
}
