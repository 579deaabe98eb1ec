// Package middleware provides HTTP middleware components for the application.
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"shipprotect/internal/logging"
	"shipprotect/internal/models"
	"shipprotect/internal/services/auth"
	"shipprotect/internal/utils"
)

// AuthMiddleware validates merchant access tokens and stores the claims in
// the request context.
type AuthMiddleware struct {
	authService auth.Service
	secret      string
	logger      *zap.Logger
}

func NewAuthMiddleware(authService auth.Service, secret string, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		secret:      secret,
		logger:      logging.OrNop(logger),
	}
}

// Handler checks for:
// - a Bearer token in the Authorization header, or the access_token cookie
// - a valid signature and expiry
// - a token version matching the account's current version
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	tokenString := bearerToken(c)
	if tokenString == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization header"})
	}

	claims, err := utils.ParseToken(tokenString, utils.TokenAccess, m.secret)
	if err != nil {
		m.logger.Debug("token rejected", zap.Error(err))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
	}

	currentVersion, err := m.authService.TokenVersion(c.UserContext(), claims.AccountID)
	if err != nil {
		m.logger.Info("token for unknown account", zap.Uint("account_id", claims.AccountID), zap.Error(err))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
	}
	if claims.TokenVersion != currentVersion {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "session expired"})
	}

	c.Locals("claims", claims)
	c.Locals("accountID", claims.AccountID)
	return c.Next()
}

func bearerToken(c *fiber.Ctx) string {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		if !strings.HasPrefix(header, "Bearer ") {
			return ""
		}
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return c.Cookies("access_token")
}

// HasPermission returns a middleware that checks for a specific permission.
// Admins pass every check.
func HasPermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("claims").(*models.AccountClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		if claims.Role == models.RoleAdmin || claims.HasPermission(permission) {
			return c.Next()
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Insufficient permissions"})
	}
}
