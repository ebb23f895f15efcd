// Package router assembles the fiber application: shared middleware, the
// public catalog routes and the token-protected cart, order and user routes.
package router

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/google/uuid"

	"github.com/wichananm65/storefront/internal/cart"
	"github.com/wichananm65/storefront/internal/category"
	"github.com/wichananm65/storefront/internal/metrics"
	"github.com/wichananm65/storefront/internal/order"
	"github.com/wichananm65/storefront/internal/product"
	"github.com/wichananm65/storefront/internal/user"
)

var protectedPrefixes = []string{"/cart", "/orders", "/users"}

type Deps struct {
	Logger           *slog.Logger
	Metrics          *metrics.Metrics
	JWTSecret        string
	CORSAllowOrigins []string

	Products   *product.Handler
	Categories *category.Handler
	Cart       *cart.Handler
	Orders     *order.Handler
	Users      *user.Handler
}

func New(d Deps) *fiber.App {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	app := fiber.New(fiber.Config{
		AppName:      "storefront",
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(requestLogger(logger))
	if d.Metrics != nil {
		app.Use(d.Metrics.Middleware())
		app.Get("/metrics", d.Metrics.Handler())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(d.CORSAllowOrigins, ","),
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	// category routes share the /products prefix and must precede /products/:id
	d.Categories.RegisterPublicRoutes(api)
	d.Products.RegisterPublicRoutes(api)

	// only the protected prefixes require a bearer token; unknown /api paths
	// fall through to the JSON 404
	api.Use(protectedPrefixes, jwtware.New(jwtware.Config{
		SigningKey:    []byte(d.JWTSecret),
		SigningMethod: "HS256",
		ContextKey:    user.LocalsKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authorized, token failed"})
		},
	}))
	d.Cart.RegisterProtectedRoutes(api)
	d.Orders.RegisterProtectedRoutes(api)
	d.Users.RegisterProtectedRoutes(api)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Not found - " + c.OriginalURL()})
	})
	return app
}

// errorHandler renders errors no handler dealt with in the shared body shape.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"message": err.Error()})
}

func requestLogger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}
		level := slog.LevelInfo
		if status >= fiber.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.UserContext(), level, "request",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.Any("request_id", c.Locals("requestid")),
		)
		return err
	}
}
