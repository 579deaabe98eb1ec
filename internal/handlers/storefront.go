package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"shipprotect/internal/domain/pricing"
	apperrors "shipprotect/internal/errors"
	"shipprotect/internal/logging"
	"shipprotect/internal/services/billing"
	"shipprotect/internal/services/storefront"
	"shipprotect/internal/utils/response"
)

// StorefrontHandler serves the public endpoints called by the cart script.
// Responses are always HTTP 200; the script branches on the envelope code.
type StorefrontHandler struct {
	storefront storefront.Service
	billing    billing.Service
	logger     *zap.Logger
}

func NewStorefrontHandler(storefront storefront.Service, billing billing.Service, logger *zap.Logger) *StorefrontHandler {
	return &StorefrontHandler{storefront: storefront, billing: billing, logger: logging.OrNop(logger)}
}

func (h *StorefrontHandler) unavailable(c *fiber.Ctx, err error) error {
	_, code, known := classify(err)
	if !known {
		h.logger.Error("storefront request failed", zap.String("path", c.Path()), zap.Error(err))
		return response.Envelope(c, code, "internal server error", nil)
	}
	return response.Envelope(c, code, err.Error(), nil)
}

func (h *StorefrontHandler) PluginConfig(c *fiber.Ctx) error {
	var input struct {
		Shop string `json:"shop"`
	}
	if err := c.BodyParser(&input); err != nil || input.Shop == "" {
		return response.Envelope(c, response.CodeInvalid, "shop is required", nil)
	}

	cfg, err := h.storefront.PluginConfig(c.UserContext(), input.Shop)
	if err != nil {
		return h.unavailable(c, err)
	}
	return response.OK(c, cfg)
}

func (h *StorefrontHandler) Quote(c *fiber.Ctx) error {
	var input struct {
		Shop     string         `json:"shop"`
		Subtotal pricing.Amount `json:"subtotal"`
	}
	if err := c.BodyParser(&input); err != nil || input.Shop == "" {
		return response.Envelope(c, response.CodeInvalid, "shop is required", nil)
	}

	quote, err := h.storefront.Quote(c.UserContext(), input.Shop, input.Subtotal.Decimal())
	if err != nil {
		return h.unavailable(c, err)
	}
	return response.OK(c, quote)
}

func (h *StorefrontHandler) RecordOrder(c *fiber.Ctx) error {
	var input billing.OrderInput
	if err := c.BodyParser(&input); err != nil || input.Shop == "" {
		return response.Envelope(c, response.CodeInvalid, "shop is required", nil)
	}

	order, err := h.billing.RecordOrder(c.UserContext(), input)
	if err != nil {
		if de, ok := apperrors.As(err); ok {
			h.logger.Info("order report rejected", zap.String("shop", input.Shop), zap.String("code", de.Code))
		}
		return h.unavailable(c, err)
	}
	return response.OK(c, fiber.Map{
		"reference": order.Reference,
		"fee":       order.Fee,
		"currency":  order.Currency,
	})
}
