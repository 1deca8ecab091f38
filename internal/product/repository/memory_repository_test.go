package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repricer/internal/domain"
	"repricer/internal/errors"
)

func TestMemoryBotSettingsRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBotSettingsRepository(domain.PricingConfig{
		ProductID: "sku-1",
		CostPrice: 10000,
		Strategy:  domain.StrategyBecomeFirst,
		MinProfit: 2000,
		MaxProfit: 8000,
	})

	cfg, err := repo.Get(ctx, "sku-1")
	require.NoError(t, err)
	assert.False(t, cfg.BotActive)

	require.NoError(t, repo.SetActive(ctx, "sku-1", true))
	ids, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sku-1"}, ids)

	require.NoError(t, repo.UpdateSettings(ctx, domain.PricingConfig{
		ProductID: "sku-1",
		Strategy:  domain.StrategyEqualPrice,
		MinProfit: 0,
		MaxProfit: 100,
		Step:      3,
	}))
	cfg, err = repo.Get(ctx, "sku-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StrategyEqualPrice, cfg.Strategy)
	assert.Equal(t, domain.Money(10000), cfg.CostPrice)
	assert.True(t, cfg.BotActive)
}

func TestMemoryBotSettingsRepository_GetReturnsCopy(t *testing.T) {
	repo := NewMemoryBotSettingsRepository(domain.PricingConfig{ProductID: "sku-1", CostPrice: 1})

	cfg, err := repo.Get(context.Background(), "sku-1")
	require.NoError(t, err)
	cfg.CostPrice = 999

	again, err := repo.Get(context.Background(), "sku-1")
	require.NoError(t, err)
	assert.Equal(t, domain.Money(1), again.CostPrice)
}

func TestMemoryBotSettingsRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBotSettingsRepository()

	_, err := repo.Get(ctx, "x")
	_, ok := errors.IsNotFoundError(err)
	assert.True(t, ok)

	_, ok = errors.IsNotFoundError(repo.SetActive(ctx, "x", true))
	assert.True(t, ok)

	_, ok = errors.IsNotFoundError(repo.UpdateSettings(ctx, domain.PricingConfig{ProductID: "x"}))
	assert.True(t, ok)
}

func TestMemoryBotSettingsRepository_UpsertFromCatalog(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBotSettingsRepository()

	require.NoError(t, repo.UpsertFromCatalog(ctx, domain.PricingConfig{ProductID: "p", CostPrice: 100, BotActive: true}))
	require.NoError(t, repo.UpsertFromCatalog(ctx, domain.PricingConfig{ProductID: "p", CostPrice: 150, BotActive: false}))

	cfg, err := repo.Get(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, domain.Money(150), cfg.CostPrice)
	assert.True(t, cfg.BotActive)
	assert.False(t, cfg.CreatedAt.IsZero())
}
