package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"shipprotect/internal/logging"
	"shipprotect/internal/services/billing"
	"shipprotect/internal/utils"
	"shipprotect/internal/utils/pagination"
	"shipprotect/internal/utils/response"
)

type BillingHandler struct {
	service billing.Service
	logger  *zap.Logger
}

func NewBillingHandler(service billing.Service, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{service: service, logger: logging.OrNop(logger)}
}

// ListOrders returns the caller's protected orders, newest first.
func (h *BillingHandler) ListOrders(c *fiber.Ctx) error {
	claims, err := utils.GetAccountClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	p := pagination.ParseFromRequest(c)
	orders, total, err := h.service.ListOrders(c.UserContext(), claims.ShopID, p.Offset, p.Limit)
	if err != nil {
		return fail(c, h.logger, err)
	}

	p.Total = total
	return c.JSON(pagination.Response(p, orders))
}

func (h *BillingHandler) Charge(c *fiber.Ctx) error {
	claims, err := utils.GetAccountClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	charge, err := h.service.ChargeUsage(c.UserContext(), claims.ShopID)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return response.OK(c, charge)
}
