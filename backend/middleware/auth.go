package middleware

import (
	"progresstracker/backend/config"
	"progresstracker/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// UserIDKey is the fiber.Locals key holding the authenticated user id.
const UserIDKey = "userID"

func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// CurrentUserID returns the id stored by AuthMiddleware.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(UserIDKey).(uint)
	return id, ok
}
