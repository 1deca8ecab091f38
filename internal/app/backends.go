package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"repricer/internal/config"
	"repricer/internal/domain"
	"repricer/internal/infrastructure/locker"
	"repricer/internal/infrastructure/mysql"
	"repricer/internal/infrastructure/redisconn"
	"repricer/internal/product/repository"
)

// SettingsRepository is the full surface of a bot settings store, shared by
// the pricing engine and the settings endpoints.
type SettingsRepository interface {
	Get(ctx context.Context, productID string) (*domain.PricingConfig, error)
	SetActive(ctx context.Context, productID string, active bool) error
	UpdateSettings(ctx context.Context, cfg domain.PricingConfig) error
	UpsertFromCatalog(ctx context.Context, cfg domain.PricingConfig) error
	ListActive(ctx context.Context) ([]string, error)
}

// Backends holds the storage and coordination handles selected by config.
// DB and Redis are nil when no configured component needs them.
type Backends struct {
	Settings SettingsRepository
	Locker   locker.Locker
	DB       *sql.DB
	Redis    *redis.Client
	logger   *zap.Logger
}

const lockPollInterval = 50 * time.Millisecond

func NewBackends(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Backends, error) {
	b := &Backends{logger: logger}

	switch cfg.Pricing.SettingsBackend {
	case "memory":
		logger.Warn("using in-memory bot settings store, settings are lost on restart")
		b.Settings = repository.NewMemoryBotSettingsRepository()
	default:
		db, err := mysql.NewConnection(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		b.DB = db
		b.Settings = repository.NewMySQLBotSettingsRepository(db)
		logger.Info("database connected")
	}

	switch cfg.Pricing.LockBackend {
	case "redis":
		client, err := redisconn.NewConnection(ctx, cfg.Redis)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		b.Redis = client
		b.Locker = locker.NewRedisLocker(client, cfg.Pricing.LockPrefix, cfg.Pricing.LockTTL, lockPollInterval)
		logger.Info("redis product locks enabled", zap.String("addr", cfg.Redis.Addr))
	default:
		b.Locker = locker.NewMemoryLocker()
	}

	return b, nil
}

func (b *Backends) Close() {
	if b.DB != nil {
		if err := b.DB.Close(); err != nil {
			b.logger.Warn("closing database", zap.Error(err))
		}
	}
	if b.Redis != nil {
		if err := b.Redis.Close(); err != nil {
			b.logger.Warn("closing redis", zap.Error(err))
		}
	}
}
