package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shipprotect/internal/domain/plugin"
	"shipprotect/internal/domain/pricing"
	apperrors "shipprotect/internal/errors"
	"shipprotect/internal/models"
	"shipprotect/internal/services/billing"
	"shipprotect/internal/services/settings"
	"shipprotect/internal/services/storefront"
	"shipprotect/internal/utils/response"
)

type MockStorefrontService struct {
	mock.Mock
}

func (m *MockStorefrontService) PluginConfig(ctx context.Context, shop string) (*plugin.Config, error) {
	args := m.Called(shop)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*plugin.Config), args.Error(1)
}

func (m *MockStorefrontService) Quote(ctx context.Context, shop string, subtotal decimal.Decimal) (*storefront.Quote, error) {
	args := m.Called(shop, subtotal.StringFixed(2))
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storefront.Quote), args.Error(1)
}

func (m *MockStorefrontService) Invalidate(ctx context.Context, shop string) error {
	return m.Called(shop).Error(0)
}

type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) Get(ctx context.Context, shopID uint) (*settings.Settings, error) {
	args := m.Called(shopID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settings.Settings), args.Error(1)
}

func (m *MockSettingsService) SavePricing(ctx context.Context, shopID uint, in settings.PricingInput) (*models.PricingSettings, error) {
	args := m.Called(shopID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PricingSettings), args.Error(1)
}

func (m *MockSettingsService) SaveWidget(ctx context.Context, shopID uint, in *models.WidgetSettings) (*models.WidgetSettings, error) {
	args := m.Called(shopID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WidgetSettings), args.Error(1)
}

func (m *MockSettingsService) SaveVariants(ctx context.Context, shopID uint, in settings.VariantsInput) (*models.ProtectionProduct, error) {
	args := m.Called(shopID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProtectionProduct), args.Error(1)
}

func (m *MockSettingsService) Preview(ctx context.Context, shopID uint, in settings.PreviewInput) (*settings.Preview, error) {
	args := m.Called(shopID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settings.Preview), args.Error(1)
}

type stubBilling struct {
	billing.Service
	order *models.ProtectedOrder
	err   error
}

func (s *stubBilling) RecordOrder(context.Context, billing.OrderInput) (*models.ProtectedOrder, error) {
	return s.order, s.err
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func withClaims(shopID uint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("claims", &models.AccountClaims{AccountID: 1, ShopID: shopID, Role: models.RoleMerchant})
		return c.Next()
	}
}

func TestStorefrontHandler_PluginConfig(t *testing.T) {
	svc := new(MockStorefrontService)
	svc.On("PluginConfig", "demo.myshopify.com").Return(&plugin.Config{PricingType: "fixed", PricingRule: "flat", FlatValue: "2.99"}, nil)
	svc.On("PluginConfig", "off.myshopify.com").Return(nil, apperrors.ErrWidgetDisabled)
	svc.On("PluginConfig", "broken.myshopify.com").Return(nil, errors.New("pq: connection reset"))

	h := NewStorefrontHandler(svc, &stubBilling{}, nil)
	app := fiber.New()
	app.Post("/api/plugin/config", h.PluginConfig)

	status, env := doJSON(t, app, "POST", "/api/plugin/config", `{"shop":"demo.myshopify.com"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, response.CodeOK, env.Code)
	var cfg plugin.Config
	require.NoError(t, json.Unmarshal(env.Data, &cfg))
	assert.Equal(t, pricing.Amount("2.99"), cfg.FlatValue)

	status, env = doJSON(t, app, "POST", "/api/plugin/config", `{"shop":"off.myshopify.com"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, response.CodeUnavailable, env.Code)
	assert.Equal(t, "null", string(env.Data))

	_, env = doJSON(t, app, "POST", "/api/plugin/config", `{"shop":"broken.myshopify.com"}`)
	assert.Equal(t, response.CodeServerError, env.Code)
	assert.Equal(t, "internal server error", env.Message)

	_, env = doJSON(t, app, "POST", "/api/plugin/config", `{}`)
	assert.Equal(t, response.CodeInvalid, env.Code)
}

func TestStorefrontHandler_Quote(t *testing.T) {
	svc := new(MockStorefrontService)
	svc.On("Quote", "demo.myshopify.com", "129.99").Return(&storefront.Quote{
		Fee:      decimal.RequireFromString("2.60"),
		Currency: "USD",
		Variant:  pricing.VariantMatch{Price: decimal.RequireFromString("2.98"), VariantID: "v3"},
	}, nil)

	app := fiber.New()
	app.Post("/api/plugin/quote", NewStorefrontHandler(svc, &stubBilling{}, nil).Quote)

	_, env := doJSON(t, app, "POST", "/api/plugin/quote", `{"shop":"demo.myshopify.com","subtotal":"129.99"}`)
	require.Equal(t, response.CodeOK, env.Code)

	var q struct {
		Fee     string `json:"fee"`
		Variant struct {
			VariantID string `json:"variant_id"`
		} `json:"variant"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &q))
	assert.Equal(t, "2.6", q.Fee)
	assert.Equal(t, "v3", q.Variant.VariantID)
	svc.AssertExpectations(t)
}

func TestStorefrontHandler_RecordOrder(t *testing.T) {
	order := &models.ProtectedOrder{Reference: "ref-1", Fee: decimal.RequireFromString("2.98"), Currency: "USD"}

	app := fiber.New()
	app.Post("/ok", NewStorefrontHandler(new(MockStorefrontService), &stubBilling{order: order}, nil).RecordOrder)
	app.Post("/bad", NewStorefrontHandler(new(MockStorefrontService), &stubBilling{err: apperrors.ErrInvalidOrder}, nil).RecordOrder)

	_, env := doJSON(t, app, "POST", "/ok", `{"shop":"demo.myshopify.com","cart_token":"c1","variant_id":44001}`)
	assert.Equal(t, response.CodeOK, env.Code)
	assert.Contains(t, string(env.Data), "ref-1")

	_, env = doJSON(t, app, "POST", "/bad", `{"shop":"demo.myshopify.com","variant_id":"nope"}`)
	assert.Equal(t, response.CodeInvalid, env.Code)
}

func TestSettingsHandler_SavePricing(t *testing.T) {
	svc := new(MockSettingsService)
	svc.On("SavePricing", uint(4), mock.MatchedBy(func(in settings.PricingInput) bool {
		return in.PricingType == "fixed"
	})).Return(models.DefaultPricingSettings(4), nil)
	svc.On("SavePricing", uint(4), mock.Anything).Return(nil, apperrors.ErrInvalidSettings.Wrap(errors.New("fixed_tiers tier 2 overlaps tier 1")))

	app := fiber.New()
	app.Put("/api/admin/settings/pricing", withClaims(4), NewSettingsHandler(svc, nil).SavePricing)

	status, env := doJSON(t, app, "PUT", "/api/admin/settings/pricing", `{"pricing_type":"fixed","pricing_rule":"flat","flat_fixed_value":"2.99"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, response.CodeOK, env.Code)
	assert.Equal(t, "Pricing saved", env.Message)

	status, env = doJSON(t, app, "PUT", "/api/admin/settings/pricing", `{"pricing_type":"percentage","pricing_rule":"tiered"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, response.CodeInvalid, env.Code)
	assert.Contains(t, env.Message, "overlaps")

	status, _ = doJSON(t, app, "PUT", "/api/admin/settings/pricing", `{"pricing_type":`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestSettingsHandler_RequiresClaims(t *testing.T) {
	app := fiber.New()
	app.Get("/api/admin/settings", NewSettingsHandler(new(MockSettingsService), nil).GetSettings)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/admin/settings", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSettingsHandler_GetSettingsUnknownShop(t *testing.T) {
	svc := new(MockSettingsService)
	svc.On("Get", uint(4)).Return(nil, apperrors.ErrShopNotFound)

	app := fiber.New()
	app.Get("/api/admin/settings", withClaims(4), NewSettingsHandler(svc, nil).GetSettings)

	status, env := doJSON(t, app, "GET", "/api/admin/settings", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, response.CodeUnavailable, env.Code)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   int
	}{
		{apperrors.ErrInvalidSettings, fiber.StatusBadRequest, response.CodeInvalid},
		{apperrors.ErrCurrencyUnsupported, fiber.StatusConflict, response.CodeUnavailable},
		{apperrors.ErrNoBillingCustomer.Wrap(errors.New("x")), fiber.StatusConflict, response.CodeUnavailable},
		{apperrors.ErrBillingFailed, fiber.StatusBadGateway, response.CodeServerError},
		{errors.New("boom"), fiber.StatusInternalServerError, response.CodeServerError},
	}
	for _, tt := range tests {
		status, code, _ := classify(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.code, code, tt.err.Error())
	}
}
