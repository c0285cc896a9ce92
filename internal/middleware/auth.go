package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/qingchaji/teacal-sync/internal/services"
	"github.com/qingchaji/teacal-sync/internal/types"
)

// AuthUser validates the bearer session token and stores the resolved user
// ID in the request context under "userID".
func AuthUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return &types.CustomError{
				Code:    fiber.StatusUnauthorized,
				Message: "Authorization bearer token not found",
				Type:    "auth.token.missing",
			}
		}

		userID, err := auth.ValidateSession(token)
		if err != nil {
			return &types.CustomError{
				Code:    fiber.StatusUnauthorized,
				Message: "Invalid session: " + err.Error(),
				Type:    "auth.token.invalid",
			}
		}

		c.Locals("userID", userID)
		c.Locals("token", token)

		return c.Next()
	}
}
