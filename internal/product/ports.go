package product

import (
	"context"

	"repricer/internal/domain"
)

type UseCase interface {
	GetBotSettings(ctx context.Context, productID string) (*BotSettingsResponse, error)
	UpdateBotSettings(ctx context.Context, productID string, req UpdateBotSettingsRequest) (*BotSettingsResponse, error)
	SyncCatalog(ctx context.Context, req CatalogSyncRequest) (*CatalogSyncResponse, error)
}

type Service interface {
	GetSettings(ctx context.Context, productID string) (*domain.PricingConfig, error)
	UpdateSettings(ctx context.Context, productID string, update SettingsUpdate) (*domain.PricingConfig, error)
	SyncCatalog(ctx context.Context, items []domain.PricingConfig) (int, error)
}

type Repository interface {
	Get(ctx context.Context, productID string) (*domain.PricingConfig, error)
	UpdateSettings(ctx context.Context, cfg domain.PricingConfig) error
	UpsertFromCatalog(ctx context.Context, cfg domain.PricingConfig) error
}

// Locker serializes settings edits with pricing passes on the same product.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// SettingsUpdate is the seller-editable part of a product's bot settings.
type SettingsUpdate struct {
	Strategy  domain.Strategy
	MinProfit domain.Money
	MaxProfit domain.Money
	Step      domain.Money
}
