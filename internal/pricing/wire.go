package pricing

import (
	"net/http"

	"go.uber.org/zap"

	"repricer/internal/config"
	"repricer/internal/pricing/applier"
	"repricer/internal/pricing/controller"
	"repricer/internal/pricing/feed"
	"repricer/internal/pricing/service"
	"repricer/internal/pricing/usecase"
)

type SettingsStore interface {
	service.BotSettingsStore
	usecase.ActiveProductLister
}

type Module struct {
	Controller *controller.PricingController
	UseCase    *usecase.PricingUseCase
}

// NewModule wires the pricing engine. enqueuer may be nil when background
// jobs are disabled.
func NewModule(store SettingsStore, locker service.Locker, enqueuer controller.PassEnqueuer, cfg *config.Config, logger *zap.Logger) *Module {
	httpClient := &http.Client{}

	competitorFeed := feed.NewHTTPFeed(httpClient, cfg.Feed.BaseURL, cfg.Feed.Token, cfg.Pricing.MinorDigits)
	priceApplier := applier.NewHTTPApplier(httpClient, cfg.Marketplace.BaseURL, cfg.Marketplace.Token, cfg.Pricing.MinorDigits)

	orchestrator := service.NewOrchestrator(store, competitorFeed, priceApplier, locker, logger, service.Options{
		Workers:      cfg.Pricing.Workers,
		StoreTimeout: cfg.Pricing.StoreTimeout,
		FetchTimeout: cfg.Pricing.FetchTimeout,
		ApplyTimeout: cfg.Pricing.ApplyTimeout,
	})

	uc := usecase.NewPricingUseCase(orchestrator, store, logger, cfg.Pricing.MaxBatchSize)

	return &Module{
		Controller: controller.NewPricingController(uc, enqueuer, logger, cfg.Pricing.MinorDigits),
		UseCase:    uc,
	}
}
