// Package main is the entry point for the API server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"shipprotect/internal/config"
	"shipprotect/internal/handlers"
	"shipprotect/internal/logging"
	"shipprotect/internal/repositories"
	"shipprotect/internal/routes"
)

func main() {
	config.LoadEnv()

	zapLogger, err := logging.NewLogger()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	stores, err := repositories.InitDB()
	if err != nil {
		zapLogger.Fatal("failed to initialise storage", zap.Error(err))
	}
	defer stores.Close()

	if err := stores.Cache.HealthCheck(context.Background()); err != nil {
		// The plugin config cache is optional; requests fall back to PostgreSQL.
		zapLogger.Warn("redis unavailable at startup", zap.Error(err))
	}

	// Log pool stats periodically
	go func() {
		sqlDB, err := stores.DB.DB()
		if err != nil {
			return
		}
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			stats := sqlDB.Stats()
			zapLogger.Debug("db pool stats",
				zap.Int("open", stats.OpenConnections),
				zap.Int("idle", stats.Idle),
				zap.Int("in_use", stats.InUse),
				zap.Int64("wait_count", stats.WaitCount),
				zap.Duration("wait_duration", stats.WaitDuration))
		}
	}()

	services, err := routes.NewServices(stores, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to build services", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		AppName:      "shipprotect",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	app.Use(recover.New())

	// The admin app is listed in CORS_ORIGINS; the storefront script runs on
	// shop domains.
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(config.GetListEnv("CORS_ORIGINS", []string{"http://localhost:5173"}), ","),
		AllowOriginsFunc: func(origin string) bool {
			return strings.HasPrefix(origin, "https://") && strings.HasSuffix(origin, ".myshopify.com")
		},
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowCredentials: true,
	}))

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	tooMany := func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "Too many requests. Please try again later.",
		})
	}

	app.Use("/api/auth/login", limiter.New(limiter.Config{
		Max:          5,
		Expiration:   time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string { return c.IP() },
		LimitReached: tooMany,
	}))

	app.Use("/api/plugin", limiter.New(limiter.Config{
		Max:          config.GetIntEnv("PLUGIN_RATE_LIMIT", 120),
		Expiration:   time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string { return c.IP() },
		LimitReached: tooMany,
	}))

	routes.SetupRoutes(app, services, handlers.NewHealthHandler(stores.DB, stores.Cache), zapLogger)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		zapLogger.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			zapLogger.Error("shutdown failed", zap.Error(err))
		}
	}()

	port := config.GetEnv("PORT", "3000")
	zapLogger.Info("listening", zap.String("port", port))
	if err := app.Listen(":" + port); err != nil {
		zapLogger.Error("server stopped", zap.Error(err))
	}
}
