// Package settings manages a shop's pricing policy, cart widget and
// protection variants from the admin app.
package settings

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"shipprotect/internal/domain/pricing"
	apperrors "shipprotect/internal/errors"
	"shipprotect/internal/models"
	"shipprotect/internal/repositories"
	"shipprotect/internal/validation"
)

// ConfigInvalidator drops the cached storefront payload of a shop.
type ConfigInvalidator interface {
	Invalidate(ctx context.Context, shopDomain string) error
}

type Service interface {
	Get(ctx context.Context, shopID uint) (*Settings, error)
	SavePricing(ctx context.Context, shopID uint, in PricingInput) (*models.PricingSettings, error)
	SaveWidget(ctx context.Context, shopID uint, in *models.WidgetSettings) (*models.WidgetSettings, error)
	SaveVariants(ctx context.Context, shopID uint, in VariantsInput) (*models.ProtectionProduct, error)
	Preview(ctx context.Context, shopID uint, in PreviewInput) (*Preview, error)
}

type service struct {
	shops       repositories.ShopRepository
	settings    repositories.SettingsRepository
	invalidator ConfigInvalidator
	logger      *zap.Logger
}

func NewService(shops repositories.ShopRepository, settings repositories.SettingsRepository, invalidator ConfigInvalidator, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		shops:       shops,
		settings:    settings,
		invalidator: invalidator,
		logger:      logger,
	}
}

func (s *service) shop(ctx context.Context, shopID uint) (*models.Shop, error) {
	shop, err := s.shops.GetByID(ctx, shopID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrShopNotFound
		}
		return nil, err
	}
	return shop, nil
}

// Get returns the shop's settings, substituting defaults for rows the
// merchant has not saved yet.
func (s *service) Get(ctx context.Context, shopID uint) (*Settings, error) {
	if _, err := s.shop(ctx, shopID); err != nil {
		return nil, err
	}

	out := &Settings{}

	ps, err := s.settings.GetPricing(ctx, shopID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		ps = models.DefaultPricingSettings(shopID)
	case err != nil:
		return nil, err
	}
	out.Pricing = ps

	ws, err := s.settings.GetWidget(ctx, shopID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		ws = models.DefaultWidgetSettings(shopID)
	case err != nil:
		return nil, err
	}
	out.Widget = ws

	product, err := s.settings.GetProduct(ctx, shopID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
	case err != nil:
		return nil, err
	default:
		out.Product = product
	}
	return out, nil
}

func (s *service) SavePricing(ctx context.Context, shopID uint, in PricingInput) (*models.PricingSettings, error) {
	shop, err := s.shop(ctx, shopID)
	if err != nil {
		return nil, err
	}

	policy := in.Policy()
	v := validation.New()
	if v.Policy(policy); !v.Valid() {
		return nil, apperrors.ErrInvalidSettings.Wrap(v.Err())
	}

	ps := &models.PricingSettings{ShopID: shopID}
	ps.ApplyPolicy(policy)
	if err := s.settings.SavePricing(ctx, ps); err != nil {
		return nil, err
	}

	s.invalidate(ctx, shop)
	s.logger.Info("pricing settings saved",
		zap.Uint("shop_id", shopID),
		zap.String("pricing_type", string(policy.Type)),
		zap.String("pricing_rule", string(policy.Rule)))
	return ps, nil
}

func (s *service) SaveWidget(ctx context.Context, shopID uint, in *models.WidgetSettings) (*models.WidgetSettings, error) {
	shop, err := s.shop(ctx, shopID)
	if err != nil {
		return nil, err
	}

	v := validation.New()
	if v.Widget(in); !v.Valid() {
		return nil, apperrors.ErrInvalidSettings.Wrap(v.Err())
	}

	ws := *in
	ws.ID = 0
	ws.ShopID = shopID
	if err := s.settings.SaveWidget(ctx, &ws); err != nil {
		return nil, err
	}

	s.invalidate(ctx, shop)
	return &ws, nil
}

func (s *service) SaveVariants(ctx context.Context, shopID uint, in VariantsInput) (*models.ProtectionProduct, error) {
	shop, err := s.shop(ctx, shopID)
	if err != nil {
		return nil, err
	}

	v := validation.New()
	if v.Variants(in.ProductID, in.Variants); !v.Valid() {
		return nil, apperrors.ErrInvalidSettings.Wrap(v.Err())
	}

	product := &models.ProtectionProduct{
		ShopID:    shopID,
		ProductID: in.ProductID,
		Variants:  datatypes.NewJSONType(in.Variants),
	}
	if err := s.settings.SaveProduct(ctx, product); err != nil {
		return nil, err
	}

	s.invalidate(ctx, shop)
	return product, nil
}

// Preview resolves a fee the same way the storefront will.
func (s *service) Preview(ctx context.Context, shopID uint, in PreviewInput) (*Preview, error) {
	current, err := s.Get(ctx, shopID)
	if err != nil {
		return nil, err
	}
	shop, err := s.shop(ctx, shopID)
	if err != nil {
		return nil, err
	}

	policy := current.Pricing.Policy()
	if in.Draft != nil {
		policy = in.Draft.Policy()
		v := validation.New()
		if v.Policy(policy); !v.Valid() {
			return nil, apperrors.ErrInvalidSettings.Wrap(v.Err())
		}
	}

	subtotal := in.Subtotal.Decimal()
	fee := pricing.NewResolver(policy, shop.Currency).Resolve(subtotal)

	out := &Preview{
		Subtotal: subtotal,
		Fee:      fee.Amount,
		Currency: fee.Currency,
	}
	if current.Product != nil {
		out.Variant = pricing.FindVariant(fee.Amount, current.Product.VariantMap())
	}
	return out, nil
}

// invalidate drops the cached storefront payload. The save has already
// succeeded, so a cache failure is only logged.
func (s *service) invalidate(ctx context.Context, shop *models.Shop) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx, shop.Domain); err != nil {
		s.logger.Warn("failed to invalidate plugin config",
			zap.String("shop", shop.Domain), zap.Error(err))
	}
}
