// Package billing records protected checkouts and charges the app's
// commission on them as Stripe usage invoice items.
package billing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"shipprotect/internal/domain/pricing"
	apperrors "shipprotect/internal/errors"
	"shipprotect/internal/models"
	"shipprotect/internal/repositories"
)

// OrderInput is posted by the storefront after a protected checkout.
type OrderInput struct {
	Shop      string            `json:"shop"`
	CartToken string            `json:"cart_token"`
	VariantID pricing.VariantID `json:"variant_id"`
	Subtotal  pricing.Amount    `json:"subtotal"`
}

// Charge summarises one ChargeUsage run.
type Charge struct {
	Orders        int             `json:"orders"`
	Protected     decimal.Decimal `json:"protected_total"`
	Commission    decimal.Decimal `json:"commission"`
	Currency      string          `json:"currency"`
	InvoiceItemID string          `json:"invoice_item_id,omitempty"`
}

type Service interface {
	RecordOrder(ctx context.Context, in OrderInput) (*models.ProtectedOrder, error)
	ListOrders(ctx context.Context, shopID uint, offset, limit int) ([]models.ProtectedOrder, int64, error)
	ChargeUsage(ctx context.Context, shopID uint) (*Charge, error)
}

type service struct {
	shops      repositories.ShopRepository
	settings   repositories.SettingsRepository
	orders     repositories.OrderRepository
	invoices   InvoiceCreator
	commission decimal.Decimal
	logger     *zap.Logger
	now        func() time.Time
}

// NewService builds the billing service. commissionPercent is the share of
// protection fees the app charges the merchant.
func NewService(shops repositories.ShopRepository, settings repositories.SettingsRepository, orders repositories.OrderRepository, invoices InvoiceCreator, commissionPercent decimal.Decimal, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		shops:      shops,
		settings:   settings,
		orders:     orders,
		invoices:   invoices,
		commission: commissionPercent,
		logger:     logger,
		now:        time.Now,
	}
}

// RecordOrder stores a protected checkout. The fee is taken from the
// variant's configured price rather than trusted from the client.
func (s *service) RecordOrder(ctx context.Context, in OrderInput) (*models.ProtectedOrder, error) {
	if in.VariantID == "" {
		return nil, apperrors.ErrInvalidOrder.Wrap(errors.New("variant_id is required"))
	}
	if strings.TrimSpace(in.CartToken) == "" {
		return nil, apperrors.ErrInvalidOrder.Wrap(errors.New("cart_token is required"))
	}

	shop, err := s.shops.GetByDomain(ctx, in.Shop)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrShopNotFound
		}
		return nil, err
	}

	product, err := s.settings.GetProduct(ctx, shop.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrNoEligibleVariant
		}
		return nil, err
	}

	price, ok := lo.FindKey(product.VariantMap(), in.VariantID)
	if !ok {
		return nil, apperrors.ErrInvalidOrder.Wrap(fmt.Errorf("variant %s is not a protection variant", in.VariantID))
	}

	order := &models.ProtectedOrder{
		ShopID:    shop.ID,
		Reference: uuid.NewString(),
		CartToken: strings.TrimSpace(in.CartToken),
		VariantID: string(in.VariantID),
		Fee:       pricing.ParseAmount(price),
		Currency:  strings.ToUpper(shop.Currency),
		Metadata: datatypes.JSONMap{
			"subtotal": in.Subtotal.Decimal().StringFixed(2),
		},
	}
	stored, created, err := s.orders.CreateOnce(ctx, order)
	if err != nil {
		return nil, err
	}
	if !created {
		s.logger.Info("protected order already recorded",
			zap.String("shop", shop.Domain),
			zap.String("reference", stored.Reference))
		return stored, nil
	}

	s.logger.Info("protected order recorded",
		zap.String("shop", shop.Domain),
		zap.String("reference", order.Reference),
		zap.String("fee", order.Fee.StringFixed(2)))
	return order, nil
}

func (s *service) ListOrders(ctx context.Context, shopID uint, offset, limit int) ([]models.ProtectedOrder, int64, error) {
	return s.orders.ListByShop(ctx, shopID, offset, limit)
}

// ChargeUsage bills the commission on every unbilled order in one invoice
// item. Retrying after a partial failure reuses the idempotency key for the
// same set of orders.
func (s *service) ChargeUsage(ctx context.Context, shopID uint) (*Charge, error) {
	shop, err := s.shops.GetByID(ctx, shopID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrShopNotFound
		}
		return nil, err
	}
	if shop.StripeCustomerID == "" {
		return nil, apperrors.ErrNoBillingCustomer
	}

	orders, err := s.orders.ListUnbilled(ctx, shopID)
	if err != nil {
		return nil, err
	}

	charge := &Charge{Orders: len(orders), Currency: strings.ToUpper(shop.Currency)}
	charge.Protected = lo.Reduce(orders, func(sum decimal.Decimal, o models.ProtectedOrder, _ int) decimal.Decimal {
		return sum.Add(o.Fee)
	}, decimal.Zero)
	charge.Commission = charge.Protected.Mul(s.commission).Div(decimal.NewFromInt(100)).Round(2)

	if len(orders) == 0 || !charge.Commission.IsPositive() {
		return charge, nil
	}

	ids := lo.Map(orders, func(o models.ProtectedOrder, _ int) uint { return o.ID })
	itemID, err := s.invoices.CreateInvoiceItem(ctx, InvoiceItem{
		CustomerID:     shop.StripeCustomerID,
		Amount:         pricing.ToMinorUnits(charge.Commission),
		Currency:       charge.Currency,
		Description:    fmt.Sprintf("Shipping protection commission (%d orders)", len(orders)),
		IdempotencyKey: idempotencyKey(shopID, ids),
		Metadata: map[string]string{
			"shop":   shop.Domain,
			"orders": strconv.Itoa(len(orders)),
		},
	})
	if err != nil {
		s.logger.Error("usage charge failed", zap.Uint("shop_id", shopID), zap.Error(err))
		return nil, apperrors.ErrBillingFailed.Wrap(err)
	}
	charge.InvoiceItemID = itemID

	if err := s.orders.MarkBilled(ctx, ids, itemID, s.now()); err != nil {
		return nil, fmt.Errorf("invoice item %s created but orders not marked: %w", itemID, err)
	}

	s.logger.Info("usage charged",
		zap.Uint("shop_id", shopID),
		zap.Int("orders", len(orders)),
		zap.String("commission", charge.Commission.StringFixed(2)),
		zap.String("invoice_item_id", itemID))
	return charge, nil
}

func idempotencyKey(shopID uint, orderIDs []uint) string {
	parts := lo.Map(orderIDs, func(id uint, _ int) string { return strconv.FormatUint(uint64(id), 10) })
	name := fmt.Sprintf("shop:%d:orders:%s", shopID, strings.Join(parts, ","))
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}
