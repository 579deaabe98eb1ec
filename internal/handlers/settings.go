package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"shipprotect/internal/logging"
	"shipprotect/internal/models"
	"shipprotect/internal/services/settings"
	"shipprotect/internal/utils"
	"shipprotect/internal/utils/response"
)

// SettingsHandler serves the admin app. Every route acts on the shop in the
// caller's token.
type SettingsHandler struct {
	service settings.Service
	logger  *zap.Logger
}

func NewSettingsHandler(service settings.Service, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{service: service, logger: logging.OrNop(logger)}
}

func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	claims, err := utils.GetAccountClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	out, err := h.service.Get(c.UserContext(), claims.ShopID)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return response.OK(c, out)
}

func (h *SettingsHandler) SavePricing(c *fiber.Ctx) error {
	claims, err := utils.GetAccountClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input settings.PricingInput
	if err := c.BodyParser(&input); err != nil {
		return response.Fail(c, fiber.StatusBadRequest, response.CodeInvalid, "Invalid request body")
	}

	saved, err := h.service.SavePricing(c.UserContext(), claims.ShopID, input)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return response.Envelope(c, response.CodeOK, "Pricing saved", saved)
}

func (h *SettingsHandler) SaveWidget(c *fiber.Ctx) error {
	claims, err := utils.GetAccountClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input models.WidgetSettings
	if err := c.BodyParser(&input); err != nil {
		return response.Fail(c, fiber.StatusBadRequest, response.CodeInvalid, "Invalid request body")
	}

	saved, err := h.service.SaveWidget(c.UserContext(), claims.ShopID, &input)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return response.Envelope(c, response.CodeOK, "Widget saved", saved)
}

func (h *SettingsHandler) SaveVariants(c *fiber.Ctx) error {
	claims, err := utils.GetAccountClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input settings.VariantsInput
	if err := c.BodyParser(&input); err != nil {
		return response.Fail(c, fiber.StatusBadRequest, response.CodeInvalid, "Invalid request body")
	}

	saved, err := h.service.SaveVariants(c.UserContext(), claims.ShopID, input)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return response.Envelope(c, response.CodeOK, "Variants saved", saved)
}

// Preview runs the fee calculator for the admin pricing page.
func (h *SettingsHandler) Preview(c *fiber.Ctx) error {
	claims, err := utils.GetAccountClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input settings.PreviewInput
	if err := c.BodyParser(&input); err != nil {
		return response.Fail(c, fiber.StatusBadRequest, response.CodeInvalid, "Invalid request body")
	}

	out, err := h.service.Preview(c.UserContext(), claims.ShopID, input)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return response.OK(c, out)
}
