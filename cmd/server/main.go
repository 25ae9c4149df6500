package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fanfie/fanfie-api/internal/config"
	"github.com/fanfie/fanfie-api/internal/handler"
	"github.com/fanfie/fanfie-api/internal/middleware"
	"github.com/fanfie/fanfie-api/internal/pkg/logger"
)

const appVersion = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Log

	sentryEnabled := cfg.Sentry.DSN != ""
	if sentryEnabled {
		if err := middleware.InitSentry(cfg.Sentry.DSN, cfg.Server.Env); err != nil {
			log.Error("failed to initialize Sentry", zap.Error(err))
			sentryEnabled = false
		} else {
			defer middleware.FlushSentry(5 * time.Second)
		}
	}

	deps, err := initDependencies(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize dependencies", zap.Error(err))
	}
	defer deps.Close()

	app := fiber.New(fiber.Config{
		AppName:               "Fanfie API",
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           120 * time.Second,
		BodyLimit:             int(cfg.Admission.MaxPayloadSize),
		DisableStartupMessage: cfg.IsProduction(),
		ErrorHandler:          handler.ErrorHandler(log),
	})

	// Global middleware. CORS runs before admission so rejections still
	// carry the CORS headers.
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(middleware.Recover(log, sentryEnabled))
	if cfg.IsProduction() && len(cfg.CORS.AllowedOrigins) > 0 {
		app.Use(middleware.CORS(middleware.ProductionCORSConfig(cfg.CORS.AllowedOrigins)))
	} else {
		app.Use(middleware.CORS())
	}
	app.Use(middleware.Metrics())

	registerRoutes(app, deps)

	go func() {
		addr := cfg.Server.Addr()
		log.Info("starting server", zap.String("addr", addr), zap.String("version", appVersion))
		if err := app.Listen(addr); err != nil {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}

	log.Info("server stopped")
}
