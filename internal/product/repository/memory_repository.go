package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"repricer/internal/domain"
	"repricer/internal/errors"
)

// MemoryBotSettingsRepository keeps bot settings in process memory, for demo
// deployments without a database and for tests.
type MemoryBotSettingsRepository struct {
	mu    sync.RWMutex
	items map[string]domain.PricingConfig
	now   func() time.Time
}

func NewMemoryBotSettingsRepository(seed ...domain.PricingConfig) *MemoryBotSettingsRepository {
	r := &MemoryBotSettingsRepository{
		items: make(map[string]domain.PricingConfig, len(seed)),
		now:   time.Now,
	}
	for _, cfg := range seed {
		r.items[cfg.ProductID] = cfg
	}
	return r
}

func (r *MemoryBotSettingsRepository) Get(ctx context.Context, productID string) (*domain.PricingConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.items[productID]
	if !ok {
		return nil, notFound(productID)
	}
	return &cfg, nil
}

func (r *MemoryBotSettingsRepository) SetActive(ctx context.Context, productID string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg, ok := r.items[productID]
	if !ok {
		return notFound(productID)
	}
	cfg.BotActive = active
	cfg.UpdatedAt = r.now()
	r.items[productID] = cfg
	return nil
}

func (r *MemoryBotSettingsRepository) UpdateSettings(ctx context.Context, update domain.PricingConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg, ok := r.items[update.ProductID]
	if !ok {
		return notFound(update.ProductID)
	}
	cfg.Strategy = update.Strategy
	cfg.MinProfit = update.MinProfit
	cfg.MaxProfit = update.MaxProfit
	cfg.Step = update.Step
	cfg.UpdatedAt = r.now()
	r.items[update.ProductID] = cfg
	return nil
}

func (r *MemoryBotSettingsRepository) UpsertFromCatalog(ctx context.Context, cfg domain.PricingConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if existing, ok := r.items[cfg.ProductID]; ok {
		existing.CostPrice = cfg.CostPrice
		existing.UpdatedAt = now
		r.items[cfg.ProductID] = existing
		return nil
	}
	cfg.CreatedAt, cfg.UpdatedAt = now, now
	r.items[cfg.ProductID] = cfg
	return nil
}

func (r *MemoryBotSettingsRepository) ListActive(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for id, cfg := range r.items {
		if cfg.BotActive {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func notFound(productID string) error {
	return errors.NewNotFoundError(fmt.Sprintf("bot settings for product %s not found", productID))
}
