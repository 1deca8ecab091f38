package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"repricer/internal/app"
	"repricer/internal/config"
	"repricer/internal/infrastructure/logger"
	"repricer/internal/pricing"
	"repricer/internal/pricing/controller"
	"repricer/internal/pricing/jobs"
	"repricer/internal/product"
	"repricer/internal/server"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(configPath())
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	backends, err := app.NewBackends(context.Background(), cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("initialising backends", zap.Error(err))
	}
	defer backends.Close()

	// Left as a nil interface when jobs are off so async requests get a 503.
	var enqueuer controller.PassEnqueuer
	if cfg.Jobs.Enabled {
		client := jobs.NewClient(jobs.RedisOpt(cfg.Redis))
		defer client.Close()
		enqueuer = client
		zapLogger.Info("background pricing passes enabled")
	}

	pricingModule := pricing.NewModule(backends.Settings, backends.Locker, enqueuer, cfg, zapLogger)
	productCtrl := product.NewModule(backends.Settings, backends.Locker, zapLogger, cfg.Pricing.MinorDigits, cfg.Pricing.StoreTimeout)

	router := server.NewRouter(pricingModule.Controller, productCtrl, cfg.Server, zapLogger)

	srv := server.New(cfg.Server, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}

func configPath() string {
	if p := os.Getenv("REPRICER_CONFIG"); p != "" {
		return p
	}
	return "internal/config/config.yaml"
}
