package order

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/storefront/internal/cart"
	"github.com/wichananm65/storefront/internal/user"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

// RegisterProtectedRoutes mounts the order routes; /orders/myorders is
// registered ahead of /orders/:id.
func (h *Handler) RegisterProtectedRoutes(router fiber.Router) {
	router.Post("/orders", h.createOrder)
	router.Get("/orders/myorders", h.getMyOrders)
	router.Get("/orders/:id", h.getOrder)
	router.Put("/orders/:id/pay", h.payOrder)
	router.Put("/orders/:id/deliver", user.RequireAdmin(), h.deliverOrder)
}

// orderItem accepts the line either as productId or as the product field
// older clients send.
type orderItem struct {
	ProductID cart.ProductRef `json:"productId"`
	Product   cart.ProductRef `json:"product"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Price     float64         `json:"price"`
	Quantity  int             `json:"quantity"`
}

type createRequest struct {
	OrderItems      []orderItem     `json:"orderItems"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	ItemsPrice      float64         `json:"itemsPrice"`
	TaxPrice        float64         `json:"taxPrice"`
	ShippingPrice   float64         `json:"shippingPrice"`
	TotalPrice      float64         `json:"totalPrice"`
}

type payRequest struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	UpdateTime string `json:"update_time"`
	Payer      struct {
		EmailAddress string `json:"email_address"`
	} `json:"payer"`
}

func (h *Handler) createOrder(c *fiber.Ctx) error {
	caller, err := user.IdentityFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(createRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	in := CreateInput{
		Items:           make([]cart.LineItem, 0, len(payload.OrderItems)),
		ShippingAddress: payload.ShippingAddress,
		PaymentMethod:   payload.PaymentMethod,
		ItemsPrice:      payload.ItemsPrice,
		TaxPrice:        payload.TaxPrice,
		ShippingPrice:   payload.ShippingPrice,
		TotalPrice:      payload.TotalPrice,
	}
	for _, it := range payload.OrderItems {
		id := it.ProductID
		if id == "" {
			id = it.Product
		}
		in.Items = append(in.Items, cart.LineItem{
			ProductID: string(id),
			Name:      it.Name,
			Image:     it.Image,
			UnitPrice: it.Price,
			Quantity:  it.Quantity,
		})
	}

	o, err := h.service.Create(c.UserContext(), caller, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(o)
}

func (h *Handler) getMyOrders(c *fiber.Ctx) error {
	ownerID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	orders, err := h.service.ListMine(c.UserContext(), ownerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(orders)
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	caller, err := user.IdentityFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	o, err := h.service.Get(c.UserContext(), caller, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) payOrder(c *fiber.Ctx) error {
	caller, err := user.IdentityFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(payRequest)
	if len(c.Body()) > 0 {
		if err := c.BodyParser(payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		}
	}

	o, err := h.service.MarkPaid(c.UserContext(), caller, c.Params("id"), PaymentResult{
		ID:           payload.ID,
		Status:       payload.Status,
		UpdateTime:   payload.UpdateTime,
		EmailAddress: payload.Payer.EmailAddress,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) deliverOrder(c *fiber.Ctx) error {
	o, err := h.service.MarkDelivered(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(o)
}

func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Order not found"})
	case errors.Is(err, ErrNoItems):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "No order items"})
	case errors.Is(err, ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}
