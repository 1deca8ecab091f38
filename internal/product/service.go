package product

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"repricer/internal/domain"
	apperrors "repricer/internal/errors"
)

const defaultStoreTimeout = 2 * time.Second

type settingsService struct {
	repo         Repository
	locker       Locker
	logger       *zap.Logger
	storeTimeout time.Duration
}

// NewService bounds all repository work done under a product lock by
// storeTimeout, which must stay below the lock lease.
func NewService(repo Repository, locker Locker, logger *zap.Logger, storeTimeout time.Duration) Service {
	if storeTimeout <= 0 {
		storeTimeout = defaultStoreTimeout
	}
	return &settingsService{repo: repo, locker: locker, logger: logger, storeTimeout: storeTimeout}
}

func (s *settingsService) GetSettings(ctx context.Context, productID string) (*domain.PricingConfig, error) {
	return s.repo.Get(ctx, productID)
}

// UpdateSettings applies update while holding the product lock, so a pricing
// pass never observes a half-edited configuration.
func (s *settingsService) UpdateSettings(ctx context.Context, productID string, update SettingsUpdate) (*domain.PricingConfig, error) {
	unlock, err := s.locker.Lock(ctx, productID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to lock product", err)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	current, err := s.repo.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	next := *current
	next.Strategy = update.Strategy
	next.MinProfit = update.MinProfit
	next.MaxProfit = update.MaxProfit
	next.Step = update.Step

	if err := next.Validate(); err != nil {
		return nil, configValidationError(err)
	}

	if err := s.repo.UpdateSettings(ctx, next); err != nil {
		return nil, err
	}

	s.logger.Info("bot settings updated",
		zap.String("productId", productID),
		zap.String("strategy", next.Strategy.String()),
		zap.Int64("minProfit", int64(next.MinProfit)),
		zap.Int64("maxProfit", int64(next.MaxProfit)),
	)

	return s.repo.Get(ctx, productID)
}

// SyncCatalog upserts catalog items one by one. On error the count is the
// number of items written before the failing one.
func (s *settingsService) SyncCatalog(ctx context.Context, items []domain.PricingConfig) (int, error) {
	for idx, item := range items {
		if item.CostPrice < 0 {
			return 0, apperrors.NewValidationError("invalid catalog item", apperrors.ValidationDetail{
				Field:   fmt.Sprintf("products[%d].costPrice", idx),
				Message: "costPrice must be non-negative",
			})
		}
	}

	synced := 0
	for _, item := range items {
		if err := s.upsert(ctx, item); err != nil {
			s.logger.Warn("catalog sync failed",
				zap.String("productId", item.ProductID),
				zap.Int("synced", synced),
				zap.Error(err),
			)
			return synced, err
		}
		synced++
	}

	s.logger.Info("catalog synced", zap.Int("count", synced))
	return synced, nil
}

func (s *settingsService) upsert(ctx context.Context, item domain.PricingConfig) error {
	unlock, err := s.locker.Lock(ctx, item.ProductID)
	if err != nil {
		return apperrors.NewInternalError("failed to lock product", err)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	return s.repo.UpsertFromCatalog(ctx, item)
}

func configValidationError(err error) error {
	if ce, ok := err.(*domain.ConfigError); ok {
		return apperrors.NewValidationError("invalid bot settings", apperrors.ValidationDetail{
			Field:   ce.Field,
			Message: ce.Field + " " + ce.Reason,
		})
	}
	return apperrors.NewValidationError("invalid bot settings", apperrors.ValidationDetail{
		Field:   "settings",
		Message: err.Error(),
	})
}
