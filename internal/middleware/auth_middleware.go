package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"estatedeal_backend/internal/model"
	"estatedeal_backend/pkg/logger"
	"estatedeal_backend/pkg/utils/jwt"
)

const (
	localsClaims    = "user"
	localsPrincipal = "principal"
)

// PrincipalResolver turns a token's user into the principal it acts as.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, userID uint) (model.Principal, error)
}

func unauthorized(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": message,
		"code":  code,
		"kind":  "unauthorized",
	})
}

// AuthMiddleware requires a valid bearer token and stores the resolved
// principal for the handlers behind it.
func AuthMiddleware(resolver PrincipalResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return unauthorized(c, "missing_token", "Authorization header is missing")
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return unauthorized(c, "invalid_header", "Invalid authorization header format")
		}

		claims, err := jwt.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			return unauthorized(c, "invalid_token", "Invalid token")
		}

		p, err := resolver.ResolvePrincipal(c.UserContext(), claims.UserID)
		if err != nil {
			logger.Log.WithField("user_id", claims.UserID).Debugf("Principal resolution failed: %v", err)
			return unauthorized(c, "invalid_token", "Invalid token")
		}

		c.Locals(localsClaims, claims)
		c.Locals(localsPrincipal, p)
		return c.Next()
	}
}

// SetPrincipal stores p for the rest of the request.
func SetPrincipal(c *fiber.Ctx, p model.Principal) {
	c.Locals(localsPrincipal, p)
}

// GetPrincipal returns the request's principal, or Anonymous when no
// authentication ran.
func GetPrincipal(c *fiber.Ctx) model.Principal {
	if p, ok := c.Locals(localsPrincipal).(model.Principal); ok {
		return p
	}
	return model.Anonymous
}
