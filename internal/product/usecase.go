package product

import (
	"context"

	"repricer/internal/domain"
	apperrors "repricer/internal/errors"
)

type botSettingsUseCase struct {
	service     Service
	minorDigits int32
}

func NewUseCase(service Service, minorDigits int32) UseCase {
	return &botSettingsUseCase{service: service, minorDigits: minorDigits}
}

func (uc *botSettingsUseCase) GetBotSettings(ctx context.Context, productID string) (*BotSettingsResponse, error) {
	cfg, err := uc.service.GetSettings(ctx, productID)
	if err != nil {
		return nil, err
	}
	resp := newBotSettingsResponse(*cfg, uc.minorDigits)
	return &resp, nil
}

func (uc *botSettingsUseCase) UpdateBotSettings(ctx context.Context, productID string, req UpdateBotSettingsRequest) (*BotSettingsResponse, error) {
	strategy, err := domain.ParseStrategy(req.Strategy)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid bot settings", apperrors.ValidationDetail{
			Field:   "strategy",
			Message: err.Error(),
		})
	}

	update := SettingsUpdate{
		Strategy:  strategy,
		MinProfit: domain.MoneyFromDecimal(req.MinProfit, uc.minorDigits),
		MaxProfit: domain.MoneyFromDecimal(req.MaxProfit, uc.minorDigits),
	}
	if req.Step != nil {
		update.Step = domain.MoneyFromDecimal(*req.Step, uc.minorDigits)
	}

	cfg, err := uc.service.UpdateSettings(ctx, productID, update)
	if err != nil {
		return nil, err
	}
	resp := newBotSettingsResponse(*cfg, uc.minorDigits)
	return &resp, nil
}

// SyncCatalog registers catalog products. New products start with the bot
// off and zero profit bounds until the seller configures them.
func (uc *botSettingsUseCase) SyncCatalog(ctx context.Context, req CatalogSyncRequest) (*CatalogSyncResponse, error) {
	items := make([]domain.PricingConfig, len(req.Products))
	for i, p := range req.Products {
		items[i] = domain.PricingConfig{
			ProductID: p.ProductID,
			CostPrice: domain.MoneyFromDecimal(p.CostPrice, uc.minorDigits),
			Strategy:  domain.StrategyBecomeFirst,
		}
	}

	synced, err := uc.service.SyncCatalog(ctx, items)
	if err != nil {
		if synced == 0 || synced >= len(items) {
			return nil, err
		}
		return &CatalogSyncResponse{
			Synced:          synced,
			FailedProductID: items[synced].ProductID,
			Message:         "sync stopped early, retry from failedProductId",
		}, nil
	}
	return &CatalogSyncResponse{Synced: synced}, nil
}
