package middleware

import (
	"strings"

	"bookstore/internal/errs"
	"bookstore/internal/models"
	"bookstore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Keys under which AuthRequired stores the caller identity in fiber.Ctx locals.
const (
	LocalUserID = "user_id"
	LocalEmail  = "email"
	LocalRole   = "role"
)

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "Authorization header is required")
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return unauthorized(c, "Authorization header format must be 'Bearer <token>'")
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			return unauthorized(c, "Invalid or expired token")
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalEmail, claims.Email)
		c.Locals(LocalRole, claims.Role)
		return c.Next()
	}
}

// AdminOnly rejects callers whose token does not carry the ADMIN role. It must run
// after AuthRequired.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalRole).(models.Role)
		if role != models.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Access denied: admin only",
				"code":    errs.CodeForbidden,
			})
		}
		return c.Next()
	}
}

// Email returns the caller's email stored by AuthRequired.
func Email(c *fiber.Ctx) string {
	email, _ := c.Locals(LocalEmail).(string)
	return email
}

// UserID returns the caller's user id stored by AuthRequired.
func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(LocalUserID).(uint)
	return id
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": message,
		"code":    errs.CodeUnauthorized,
	})
}
