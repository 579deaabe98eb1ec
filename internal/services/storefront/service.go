// Package storefront serves the public endpoints the cart script calls:
// the plugin config and server-side fee quotes.
package storefront

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"shipprotect/internal/domain/plugin"
	"shipprotect/internal/domain/pricing"
	apperrors "shipprotect/internal/errors"
	"shipprotect/internal/models"
	"shipprotect/internal/repositories"
	"shipprotect/internal/repositories/cache"
)

// ConfigCache is the subset of cache.CacheService used for plugin configs.
type ConfigCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

// Quote is the fee and variant for a cart subtotal.
type Quote struct {
	Subtotal  decimal.Decimal      `json:"subtotal"`
	Fee       decimal.Decimal      `json:"fee"`
	Currency  string               `json:"currency"`
	ProductID string               `json:"product_id"`
	Variant   pricing.VariantMatch `json:"variant"`
}

type Service interface {
	PluginConfig(ctx context.Context, shopDomain string) (*plugin.Config, error)
	Quote(ctx context.Context, shopDomain string, subtotal decimal.Decimal) (*Quote, error)
	Invalidate(ctx context.Context, shopDomain string) error
}

type service struct {
	shops      repositories.ShopRepository
	settings   repositories.SettingsRepository
	cache      ConfigCache
	currencies pricing.CurrencyPolicy
	logger     *zap.Logger
}

// NewService builds the storefront service. cache may be nil, in which case
// every request is assembled from the database.
func NewService(shops repositories.ShopRepository, settings repositories.SettingsRepository, cache ConfigCache, currencies pricing.CurrencyPolicy, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		shops:      shops,
		settings:   settings,
		cache:      cache,
		currencies: currencies,
		logger:     logger,
	}
}

func (s *service) PluginConfig(ctx context.Context, shopDomain string) (*plugin.Config, error) {
	domain := repositories.NormalizeDomain(shopDomain)
	if domain == "" {
		return nil, apperrors.ErrShopNotFound
	}

	key := cache.PluginConfigKey(domain)
	if s.cache != nil {
		var cached plugin.Config
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("plugin config cache read failed", zap.String("shop", domain), zap.Error(err))
		}
		if hit {
			if !s.currencies.Supports(cached.Currency) {
				return nil, apperrors.ErrCurrencyUnsupported
			}
			return &cached, nil
		}
	}

	cfg, err := s.assemble(ctx, domain)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, cfg); err != nil {
			s.logger.Warn("plugin config cache write failed", zap.String("shop", domain), zap.Error(err))
		}
	}
	return cfg, nil
}

func (s *service) assemble(ctx context.Context, domain string) (*plugin.Config, error) {
	shop, err := s.shops.GetByDomain(ctx, domain)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrShopNotFound
		}
		return nil, err
	}
	if !shop.Active() {
		return nil, apperrors.ErrWidgetDisabled
	}
	if !s.currencies.Supports(shop.Currency) {
		return nil, apperrors.ErrCurrencyUnsupported
	}

	ws, err := s.settings.GetWidget(ctx, shop.ID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		ws = models.DefaultWidgetSettings(shop.ID)
	case err != nil:
		return nil, err
	}
	if !ws.Enabled {
		return nil, apperrors.ErrWidgetDisabled
	}

	ps, err := s.settings.GetPricing(ctx, shop.ID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		ps = models.DefaultPricingSettings(shop.ID)
	case err != nil:
		return nil, err
	}

	product, err := s.settings.GetProduct(ctx, shop.ID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		product = nil
	case err != nil:
		return nil, err
	}

	cfg := plugin.FromSettings(shop, ps, ws, product)
	return &cfg, nil
}

func (s *service) Quote(ctx context.Context, shopDomain string, subtotal decimal.Decimal) (*Quote, error) {
	cfg, err := s.PluginConfig(ctx, shopDomain)
	if err != nil {
		return nil, err
	}

	fee := pricing.NewResolver(cfg.Policy(), cfg.Currency).Resolve(subtotal)
	return &Quote{
		Subtotal:  subtotal,
		Fee:       fee.Amount,
		Currency:  fee.Currency,
		ProductID: cfg.ProductID,
		Variant:   pricing.FindVariant(fee.Amount, cfg.Variants),
	}, nil
}

// Invalidate drops the cached payload so the next request reassembles it.
func (s *service) Invalidate(ctx context.Context, shopDomain string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, cache.PluginConfigKey(shopDomain))
}
