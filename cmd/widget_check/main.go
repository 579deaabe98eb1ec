// Command widget_check runs the cart widget session against a live shop and
// backend and logs what the widget would show. With WIDGET_CHECKOUT=true it
// also adds the protection variant to the cart and reports the order.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"shipprotect/internal/config"
	"shipprotect/internal/domain/pricing"
	"shipprotect/internal/logging"
	"shipprotect/internal/storefront"
)

// logRenderer stands in for the cart drawer and logs each view.
type logRenderer struct {
	logger *zap.Logger
}

func (r logRenderer) Mount(v storefront.View) error {
	r.log("widget mounted", v)
	return nil
}

func (r logRenderer) Update(v storefront.View) error {
	r.log("widget updated", v)
	return nil
}

func (r logRenderer) log(msg string, v storefront.View) {
	r.logger.Info(msg,
		zap.String("title", v.Config.AddonTitle),
		zap.String("fee", v.Fee.Amount.StringFixed(2)),
		zap.String("currency", v.Fee.Currency),
		zap.String("variant", string(v.Variant.VariantID)),
		zap.String("variant_price", v.Variant.Price.StringFixed(2)),
		zap.Bool("opted_in", v.OptedIn))
}

func main() {
	config.LoadEnv()

	logger, err := logging.NewLogger()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	shop := config.GetEnv("WIDGET_SHOP", "")
	storeURL := config.GetEnv("WIDGET_STORE_URL", "")
	if shop == "" {
		logger.Fatal("WIDGET_SHOP must be set")
	}
	if storeURL == "" {
		storeURL = "https://" + shop
	}
	timeout := config.GetDurationEnv("WIDGET_TIMEOUT", 10*time.Second)

	backend := storefront.NewBackendClient(config.GetEnv("WIDGET_BACKEND_URL", "http://localhost:3000"), timeout)
	cart := storefront.NewCartClient(storeURL, config.GetEnv("WIDGET_CART_COOKIE", ""), timeout)

	session := storefront.NewSession(cart, backend, logRenderer{logger: logger}, storefront.Options{
		Shop:       shop,
		Currency:   config.GetEnv("WIDGET_CURRENCY", "USD"),
		Currencies: pricing.NewAllowList(config.GetListEnv("SUPPORTED_CURRENCIES", []string{"USD"})...),
		Recorder:   backend,
		Logger:     logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := session.Init(ctx); err != nil {
		logger.Warn("widget not shown", zap.Error(err), zap.Stringer("state", session.State()))
		return
	}

	if strings.EqualFold(config.GetEnv("WIDGET_CHECKOUT", "false"), "true") {
		res := session.Checkout(ctx)
		logger.Info("checkout",
			zap.Bool("added", res.Added),
			zap.String("variant", string(res.Variant.VariantID)),
			zap.Error(res.Err))
	}
}
