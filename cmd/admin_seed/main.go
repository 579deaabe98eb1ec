// Command admin_seed creates a shop, its merchant login, default settings
// and a sample protection variant ladder.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"shipprotect/internal/config"
	"shipprotect/internal/domain/pricing"
	"shipprotect/internal/logging"
	"shipprotect/internal/models"
	"shipprotect/internal/repositories"
	"shipprotect/internal/repositories/cache"
	"shipprotect/internal/services/auth"
	"shipprotect/internal/validation"
)

// sampleLadder prices variants every dollar from $0.98 to $9.98. Real ids
// come from the shop's protection product; these are placeholders.
func sampleLadder(productID string) pricing.VariantMap {
	ladder := pricing.VariantMap{}
	for i := int64(0); i < 10; i++ {
		price := decimal.New(98, -2).Add(decimal.NewFromInt(i))
		ladder[price.StringFixed(2)] = pricing.VariantID(fmt.Sprintf("%s-%d", productID, i+1))
	}
	return ladder
}

func main() {
	config.LoadEnv()

	logger, err := logging.NewLogger()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	shopDomain := os.Getenv("SEED_SHOP_DOMAIN")
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if shopDomain == "" || email == "" || password == "" {
		logger.Fatal("SEED_SHOP_DOMAIN, ADMIN_EMAIL and ADMIN_PASSWORD must be set in environment")
	}
	v := validation.New()
	v.Credentials(email, password)
	if err := v.Err(); err != nil {
		logger.Fatal("invalid admin credentials", zap.Error(err))
	}

	stores, err := repositories.InitDB()
	if err != nil {
		logger.Fatal("failed to initialise storage", zap.Error(err))
	}
	defer stores.Close()

	ctx := context.Background()
	shops := repositories.NewShopRepository(stores.DB)
	accounts := repositories.NewAccountRepository(stores.DB)
	settings := repositories.NewSettingsRepository(stores.DB)

	shop, err := shops.GetByDomain(ctx, shopDomain)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		shop = &models.Shop{
			Domain:           shopDomain,
			Name:             config.GetEnv("SEED_SHOP_NAME", shopDomain),
			Currency:         config.GetEnv("SEED_SHOP_CURRENCY", "USD"),
			Status:           models.ShopStatusActive,
			StripeCustomerID: os.Getenv("SEED_STRIPE_CUSTOMER_ID"),
		}
		if err := shops.Create(ctx, shop); err != nil {
			logger.Fatal("failed to create shop", zap.Error(err))
		}
		logger.Info("shop created", zap.String("shop", shop.Domain))
	case err != nil:
		logger.Fatal("failed to look up shop", zap.Error(err))
	default:
		logger.Info("shop already exists", zap.String("shop", shop.Domain))
	}

	if _, err := accounts.GetByEmail(ctx, email); err == nil {
		logger.Info("merchant account already exists", zap.String("email", email))
	} else {
		hashed, err := auth.HashPassword(password)
		if err != nil {
			logger.Fatal("failed to hash password", zap.Error(err))
		}
		account := &models.Account{
			Email:        email,
			Password:     hashed,
			ShopID:       shop.ID,
			Role:         config.GetEnv("ADMIN_ROLE", models.RoleMerchant),
			Status:       models.AccountStatusActive,
			TokenVersion: 1,
		}
		if err := accounts.Create(ctx, account); err != nil {
			logger.Fatal("failed to create merchant account", zap.Error(err))
		}
		logger.Info("merchant account created", zap.String("email", email))
	}

	if _, err := settings.GetPricing(ctx, shop.ID); errors.Is(err, repositories.ErrNotFound) {
		if err := settings.SavePricing(ctx, models.DefaultPricingSettings(shop.ID)); err != nil {
			logger.Fatal("failed to save default pricing", zap.Error(err))
		}
	}
	if _, err := settings.GetWidget(ctx, shop.ID); errors.Is(err, repositories.ErrNotFound) {
		if err := settings.SaveWidget(ctx, models.DefaultWidgetSettings(shop.ID)); err != nil {
			logger.Fatal("failed to save default widget", zap.Error(err))
		}
	}
	if productID := os.Getenv("SEED_PRODUCT_ID"); productID != "" {
		product := &models.ProtectionProduct{
			ShopID:    shop.ID,
			ProductID: productID,
			Variants:  datatypes.NewJSONType(sampleLadder(productID)),
		}
		if err := settings.SaveProduct(ctx, product); err != nil {
			logger.Fatal("failed to save protection product", zap.Error(err))
		}
		logger.Info("sample variant ladder saved", zap.String("product_id", productID))
	}

	if err := stores.Cache.Delete(ctx, cache.PluginConfigKey(shop.Domain)); err != nil {
		logger.Warn("failed to clear plugin config cache", zap.Error(err))
	}

	logger.Info("seed complete", zap.String("shop", shop.Domain))
}
