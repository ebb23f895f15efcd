package product

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes mounts the catalog routes under router (normally /api).
// Fixed segments such as /products/search must be registered before /products/:id.
func (h *Handler) RegisterPublicRoutes(router fiber.Router) {
	router.Get("/products", h.getProducts)
	router.Get("/products/search", h.searchProducts)
	router.Get("/products/:id", h.getProduct)
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
	q := ListQuery{Limit: DefaultLimit, Select: c.Query("select")}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid limit"})
		}
		q.Limit = n
	}
	if v := c.Query("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid skip"})
		}
		q.Skip = n
	}

	raw, err := h.service.List(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return sendRaw(c, raw)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	p, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) searchProducts(c *fiber.Ctx) error {
	raw, err := h.service.Search(c.UserContext(), c.Query("q"))
	if err != nil {
		return writeError(c, err)
	}
	return sendRaw(c, raw)
}

func sendRaw(c *fiber.Ctx, raw json.RawMessage) error {
	c.Type("json")
	return c.Send(raw)
}

// WriteError renders catalog errors; exported for the category handler.
func WriteError(c *fiber.Ctx, err error) error {
	return writeError(c, err)
}

func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found"})
	case errors.Is(err, ErrMissingQuery):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Please provide a search query"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}

// SendRaw writes an upstream JSON body as-is.
func SendRaw(c *fiber.Ctx, raw json.RawMessage) error {
	return sendRaw(c, raw)
}
