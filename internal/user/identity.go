package user

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// LocalsKey is where the jwt middleware stores the verified token.
const LocalsKey = "user"

// IdentityFromCtx reads the claims of the token stored in c.Locals("user").
// Only user_id is mandatory.
func IdentityFromCtx(c *fiber.Ctx) (Identity, error) {
	tok, ok := c.Locals(LocalsKey).(*jwt.Token)
	if !ok || tok == nil {
		return Identity{}, fiber.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, fiber.ErrUnauthorized
	}
	id := claimString(claims["user_id"])
	if id == "" {
		return Identity{}, fiber.ErrUnauthorized
	}
	return Identity{
		UserID:  id,
		Name:    claimString(claims["name"]),
		Email:   claimString(claims["email"]),
		IsAdmin: claimBool(claims["isAdmin"]),
	}, nil
}

// GetUserIDFromCtx is IdentityFromCtx reduced to the owner id.
func GetUserIDFromCtx(c *fiber.Ctx) (string, error) {
	id, err := IdentityFromCtx(c)
	if err != nil {
		return "", err
	}
	return id.UserID, nil
}

// RequireAdmin rejects callers whose token does not carry isAdmin.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := IdentityFromCtx(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		}
		if !id.IsAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Not authorized as an admin"})
		}
		return c.Next()
	}
}

func claimString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}

func claimBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(t)
		return b
	default:
		return false
	}
}
