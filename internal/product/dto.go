package product

import (
	"time"

	"github.com/shopspring/decimal"

	"repricer/internal/domain"
)

type UpdateBotSettingsRequest struct {
	Strategy  string           `json:"strategy" validate:"required,oneof=become-first equal-price"`
	MinProfit decimal.Decimal  `json:"minProfit"`
	MaxProfit decimal.Decimal  `json:"maxProfit"`
	Step      *decimal.Decimal `json:"step,omitempty"`
}

type BotSettingsResponse struct {
	ProductID string          `json:"productId"`
	CostPrice decimal.Decimal `json:"costPrice"`
	BotActive bool            `json:"botActive"`
	Strategy  string          `json:"strategy"`
	MinProfit decimal.Decimal `json:"minProfit"`
	MaxProfit decimal.Decimal `json:"maxProfit"`
	Step      decimal.Decimal `json:"step"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type CatalogSyncRequest struct {
	Products []CatalogItemDTO `json:"products" validate:"required,min=1,max=1000,dive"`
}

type CatalogItemDTO struct {
	ProductID string          `json:"productId" validate:"required,max=64"`
	CostPrice decimal.Decimal `json:"costPrice"`
}

// CatalogSyncResponse reports a partial sync through FailedProductID when
// some items were written before an error.
type CatalogSyncResponse struct {
	Synced          int    `json:"synced"`
	FailedProductID string `json:"failedProductId,omitempty"`
	Message         string `json:"message,omitempty"`
}

func newBotSettingsResponse(cfg domain.PricingConfig, minorDigits int32) BotSettingsResponse {
	return BotSettingsResponse{
		ProductID: cfg.ProductID,
		CostPrice: cfg.CostPrice.Decimal(minorDigits),
		BotActive: cfg.BotActive,
		Strategy:  cfg.Strategy.String(),
		MinProfit: cfg.MinProfit.Decimal(minorDigits),
		MaxProfit: cfg.MaxProfit.Decimal(minorDigits),
		Step:      cfg.EffectiveStep().Decimal(minorDigits),
		UpdatedAt: cfg.UpdatedAt,
	}
}
