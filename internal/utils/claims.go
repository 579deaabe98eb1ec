package utils

import (
	"errors"

	"shipprotect/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetAccountClaims extracts the account claims from the Fiber context.
// It returns an error if the claims are missing or of an invalid type.
func GetAccountClaims(c *fiber.Ctx) (*models.AccountClaims, error) {
	v := c.Locals("claims")
	if v == nil {
		return nil, errors.New("claims not found in context")
	}

	claims, ok := v.(*models.AccountClaims)
	if !ok {
		return nil, errors.New("invalid claims type")
	}
	return claims, nil
}
