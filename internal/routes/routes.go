// Package routes defines the API routing configuration.
// It wires repositories into services and services into handlers.
package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"shipprotect/internal/config"
	"shipprotect/internal/domain/pricing"
	"shipprotect/internal/handlers"
	"shipprotect/internal/middleware"
	"shipprotect/internal/models"
	"shipprotect/internal/repositories"
	"shipprotect/internal/services/auth"
	"shipprotect/internal/services/billing"
	"shipprotect/internal/services/settings"
	"shipprotect/internal/services/storefront"
	"shipprotect/internal/utils/response"
)

// Services are the application services behind the HTTP API.
type Services struct {
	Auth       auth.Service
	Settings   settings.Service
	Storefront storefront.Service
	Billing    billing.Service
}

// NewServices builds every service over the opened stores.
func NewServices(stores *repositories.Stores, logger *zap.Logger) (*Services, error) {
	shopRepo := repositories.NewShopRepository(stores.DB)
	accountRepo := repositories.NewAccountRepository(stores.DB)
	settingsRepo := repositories.NewSettingsRepository(stores.DB)
	orderRepo := repositories.NewOrderRepository(stores.DB)

	currencies := pricing.NewAllowList(config.GetListEnv("SUPPORTED_CURRENCIES", []string{"USD"})...)

	var invoices billing.InvoiceCreator = billing.Unconfigured{}
	if key := config.GetEnv("STRIPE_SECRET_KEY", ""); key != "" {
		stripeInvoicer, err := billing.NewStripeInvoicer(key)
		if err != nil {
			return nil, err
		}
		invoices = stripeInvoicer
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set; usage charges are disabled")
	}

	storefrontService := storefront.NewService(shopRepo, settingsRepo, stores.Cache, currencies, logger.Named("storefront"))

	return &Services{
		Auth: auth.NewService(
			accountRepo,
			config.GetEnv("JWT_SECRET", ""),
			config.GetEnv("REFRESH_SECRET", ""),
			logger.Named("auth"),
		),
		Settings:   settings.NewService(shopRepo, settingsRepo, storefrontService, logger.Named("settings")),
		Storefront: storefrontService,
		Billing: billing.NewService(
			shopRepo,
			settingsRepo,
			orderRepo,
			invoices,
			config.GetDecimalEnv("BILLING_COMMISSION_PERCENT", decimal.NewFromInt(10)),
			logger.Named("billing"),
		),
	}, nil
}

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, svc *Services, health *handlers.HealthHandler, logger *zap.Logger) {
	authHandler := handlers.NewAuthHandler(svc.Auth, logger)
	settingsHandler := handlers.NewSettingsHandler(svc.Settings, logger)
	storefrontHandler := handlers.NewStorefrontHandler(svc.Storefront, svc.Billing, logger)
	billingHandler := handlers.NewBillingHandler(svc.Billing, logger)

	app.Get("/health", health.HealthCheck)

	api := app.Group("/api")

	// Public storefront endpoints
	plugin := api.Group("/plugin")
	plugin.Post("/config", storefrontHandler.PluginConfig)
	plugin.Post("/quote", storefrontHandler.Quote)
	plugin.Post("/orders", storefrontHandler.RecordOrder)

	// Merchant auth
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.Refresh)

	authMiddleware := middleware.NewAuthMiddleware(svc.Auth, config.GetEnv("JWT_SECRET", ""), logger)
	authGroup.Post("/logout", authMiddleware.Handler, authHandler.Logout)

	admin := api.Group("/admin", authMiddleware.Handler)
	setupSettingsRoutes(admin, settingsHandler)
	setupBillingRoutes(admin, billingHandler)
	admin.Get("/cache-stats", middleware.HasPermission(models.PermissionSettingsRead), health.CacheStats)

	app.Use(func(c *fiber.Ctx) error {
		return response.NotFound(c, "Route not found")
	})
}

func setupSettingsRoutes(router fiber.Router, h *handlers.SettingsHandler) {
	read := middleware.HasPermission(models.PermissionSettingsRead)
	write := middleware.HasPermission(models.PermissionSettingsWrite)

	router.Get("/settings", read, h.GetSettings)
	router.Put("/settings/pricing", write, h.SavePricing)
	router.Put("/settings/widget", write, h.SaveWidget)
	router.Put("/variants", write, h.SaveVariants)
	router.Post("/preview", read, h.Preview)
}

func setupBillingRoutes(router fiber.Router, h *handlers.BillingHandler) {
	group := router.Group("/billing")
	group.Get("/orders", middleware.HasPermission(models.PermissionBillingRead), h.ListOrders)
	group.Post("/charge", middleware.HasPermission(models.PermissionBillingWrite), h.Charge)
}
