package middleware

import (
	"github.com/gofiber/fiber/v2"

	"estatedeal_backend/internal/model"
)

// RequireRole lets the request through only for the listed roles.
func RequireRole(roles ...model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := GetPrincipal(c)
		if !p.Authenticated() {
			return unauthorized(c, "unauthenticated", "authentication required")
		}
		for _, r := range roles {
			if p.Role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You don't have permission to access this resource",
			"code":  "role_forbidden",
			"kind":  "forbidden",
		})
	}
}

// RequireVerifiedBroker admits brokers whose account has been verified.
func RequireVerifiedBroker() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := GetPrincipal(c)
		if p.Role != model.RoleBroker || !p.VerifiedBroker {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Only verified brokers can perform this action",
				"code":  "broker_not_verified",
				"kind":  "forbidden",
			})
		}
		return c.Next()
	}
}
