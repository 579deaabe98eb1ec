package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "shipprotect/internal/errors"
	"shipprotect/internal/utils/response"
)

// classify maps a client-facing error to an HTTP status and envelope code.
func classify(err error) (int, int, bool) {
	de, ok := apperrors.As(err)
	if !ok {
		return fiber.StatusInternalServerError, response.CodeServerError, false
	}

	switch {
	case errors.Is(de, apperrors.ErrInvalidSettings), errors.Is(de, apperrors.ErrInvalidOrder):
		return fiber.StatusBadRequest, response.CodeInvalid, true
	case errors.Is(de, apperrors.ErrShopNotFound):
		return fiber.StatusNotFound, response.CodeUnavailable, true
	case errors.Is(de, apperrors.ErrWidgetDisabled),
		errors.Is(de, apperrors.ErrCurrencyUnsupported),
		errors.Is(de, apperrors.ErrNoEligibleVariant),
		errors.Is(de, apperrors.ErrNoBillingCustomer):
		return fiber.StatusConflict, response.CodeUnavailable, true
	case errors.Is(de, apperrors.ErrBillingFailed):
		return fiber.StatusBadGateway, response.CodeServerError, true
	default:
		return fiber.StatusInternalServerError, response.CodeServerError, true
	}
}

// fail writes err as an envelope. Unclassified errors are logged and
// hidden from the client.
func fail(c *fiber.Ctx, logger *zap.Logger, err error) error {
	status, code, known := classify(err)
	if !known {
		logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
		return response.Fail(c, status, code, "internal server error")
	}
	return response.Fail(c, status, code, err.Error())
}
