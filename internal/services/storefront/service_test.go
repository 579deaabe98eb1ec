package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/datatypes"

	"shipprotect/internal/domain/pricing"
	apperrors "shipprotect/internal/errors"
	"shipprotect/internal/models"
	"shipprotect/internal/repositories"
	"shipprotect/internal/repositories/cache"
)

type fakeShops struct {
	repositories.ShopRepository
	byDomain map[string]*models.Shop
	lookups  int
}

func (f *fakeShops) GetByDomain(_ context.Context, domain string) (*models.Shop, error) {
	f.lookups++
	shop, ok := f.byDomain[domain]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return shop, nil
}

type fakeSettings struct {
	repositories.SettingsRepository
	pricing map[uint]*models.PricingSettings
	widget  map[uint]*models.WidgetSettings
	product map[uint]*models.ProtectionProduct
}

func (f *fakeSettings) GetPricing(_ context.Context, shopID uint) (*models.PricingSettings, error) {
	if s, ok := f.pricing[shopID]; ok {
		return s, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeSettings) GetWidget(_ context.Context, shopID uint) (*models.WidgetSettings, error) {
	if s, ok := f.widget[shopID]; ok {
		return s, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeSettings) GetProduct(_ context.Context, shopID uint) (*models.ProtectionProduct, error) {
	if p, ok := f.product[shopID]; ok {
		return p, nil
	}
	return nil, repositories.ErrNotFound
}

// memoryCache round-trips values through JSON like the Redis cache does.
type memoryCache struct {
	data    map[string][]byte
	failGet bool
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	if m.failGet {
		return false, errors.New("connection refused")
	}
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *memoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

type StorefrontSuite struct {
	suite.Suite
	ctx      context.Context
	shops    *fakeShops
	settings *fakeSettings
	cache    *memoryCache
	svc      Service
}

func TestStorefrontSuite(t *testing.T) {
	suite.Run(t, new(StorefrontSuite))
}

func (s *StorefrontSuite) SetupTest() {
	s.ctx = context.Background()

	demo := &models.Shop{Domain: "demo.myshopify.com", Currency: "USD", Status: models.ShopStatusActive}
	demo.ID = 1
	euro := &models.Shop{Domain: "euro.myshopify.com", Currency: "EUR", Status: models.ShopStatusActive}
	euro.ID = 2
	off := &models.Shop{Domain: "off.myshopify.com", Currency: "USD", Status: models.ShopStatusActive}
	off.ID = 3

	ps := &models.PricingSettings{ShopID: 1}
	ps.ApplyPolicy(pricing.Policy{
		Type: pricing.TypeFixed,
		Rule: pricing.RuleTiered,
		FixedTiers: []pricing.FixedTier{
			{Min: decimal.NewFromInt(1), Max: decimal.NewFromInt(100), Price: decimal.NewFromInt(3)},
			{Min: decimal.NewFromInt(101), Max: decimal.NewFromInt(1000), Price: decimal.NewFromInt(10)},
		},
		OutOfRangeFixedValue: decimal.NewFromInt(25),
	})

	disabled := models.DefaultWidgetSettings(3)
	disabled.Enabled = false

	s.shops = &fakeShops{byDomain: map[string]*models.Shop{
		demo.Domain: demo,
		euro.Domain: euro,
		off.Domain:  off,
	}}
	s.settings = &fakeSettings{
		pricing: map[uint]*models.PricingSettings{1: ps},
		widget:  map[uint]*models.WidgetSettings{3: disabled},
		product: map[uint]*models.ProtectionProduct{1: {
			ShopID:    1,
			ProductID: "8001",
			Variants:  datatypes.NewJSONType(pricing.VariantMap{"3.00": "v3", "10.00": "v10"}),
		}},
	}
	s.cache = &memoryCache{data: map[string][]byte{}}
	s.svc = NewService(s.shops, s.settings, s.cache, pricing.NewAllowList("USD"), nil)
}

func (s *StorefrontSuite) TestPluginConfig_AssemblesAndCaches() {
	cfg, err := s.svc.PluginConfig(s.ctx, " Demo.myshopify.com ")
	s.Require().NoError(err)
	s.Equal("fixed", cfg.PricingType)
	s.Equal("tiered", cfg.PricingRule)
	s.Len(cfg.PriceSelect, 2)
	s.Equal("8001", cfg.ProductID)
	s.Equal("Shipping Protection", cfg.AddonTitle)
	s.Contains(s.cache.data, cache.PluginConfigKey("demo.myshopify.com"))

	_, err = s.svc.PluginConfig(s.ctx, "demo.myshopify.com")
	s.Require().NoError(err)
	s.Equal(1, s.shops.lookups, "second read is served from cache")
}

func (s *StorefrontSuite) TestPluginConfig_Gates() {
	_, err := s.svc.PluginConfig(s.ctx, "nobody.myshopify.com")
	s.ErrorIs(err, apperrors.ErrShopNotFound)

	_, err = s.svc.PluginConfig(s.ctx, "")
	s.ErrorIs(err, apperrors.ErrShopNotFound)

	_, err = s.svc.PluginConfig(s.ctx, "euro.myshopify.com")
	s.ErrorIs(err, apperrors.ErrCurrencyUnsupported)

	_, err = s.svc.PluginConfig(s.ctx, "off.myshopify.com")
	s.ErrorIs(err, apperrors.ErrWidgetDisabled)

	s.Empty(s.cache.data)
}

func (s *StorefrontSuite) TestPluginConfig_CacheReadFailureFallsBack() {
	s.cache.failGet = true
	cfg, err := s.svc.PluginConfig(s.ctx, "demo.myshopify.com")
	s.Require().NoError(err)
	s.Equal("USD", cfg.Currency)
}

func (s *StorefrontSuite) TestQuote() {
	tests := []struct {
		subtotal int64
		fee      string
		variant  pricing.VariantID
	}{
		{50, "3.00", "v3"},
		{150, "10.00", "v10"},
		{5000, "25.00", ""},
	}

	for _, tt := range tests {
		q, err := s.svc.Quote(s.ctx, "demo.myshopify.com", decimal.NewFromInt(tt.subtotal))
		s.Require().NoError(err)
		s.Equal(tt.fee, q.Fee.StringFixed(2), "subtotal %d", tt.subtotal)
		s.Equal(tt.variant, q.Variant.VariantID, "subtotal %d", tt.subtotal)
		s.Equal("USD", q.Currency)
	}
}

func (s *StorefrontSuite) TestInvalidate() {
	_, err := s.svc.PluginConfig(s.ctx, "demo.myshopify.com")
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Invalidate(s.ctx, "DEMO.myshopify.com"))
	s.Empty(s.cache.data)

	_, err = s.svc.PluginConfig(s.ctx, "demo.myshopify.com")
	s.Require().NoError(err)
	s.Equal(2, s.shops.lookups)
}
