package repository

import (
	"context"
	"database/sql"
	"fmt"

	"repricer/internal/domain"
	"repricer/internal/errors"
)

type MySQLBotSettingsRepository struct {
	db *sql.DB
}

func NewMySQLBotSettingsRepository(db *sql.DB) *MySQLBotSettingsRepository {
	return &MySQLBotSettingsRepository{db: db}
}

func (r *MySQLBotSettingsRepository) Get(ctx context.Context, productID string) (*domain.PricingConfig, error) {
	query := `
		SELECT productId, costPrice, botActive, strategy, minProfit, maxProfit, step,
		       createdAt, updatedAt
		FROM BotSettings
		WHERE productId = ?
	`

	var (
		cfg      domain.PricingConfig
		strategy string
	)
	err := r.db.QueryRowContext(ctx, query, productID).Scan(
		&cfg.ProductID, &cfg.CostPrice, &cfg.BotActive, &strategy,
		&cfg.MinProfit, &cfg.MaxProfit, &cfg.Step,
		&cfg.CreatedAt, &cfg.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("bot settings for product %s not found", productID))
	}
	if err != nil {
		return nil, fmt.Errorf("querying bot settings by product id: %w", err)
	}

	cfg.Strategy, err = domain.ParseStrategy(strategy)
	if err != nil {
		return nil, fmt.Errorf("decoding strategy of product %s: %w", productID, err)
	}

	return &cfg, nil
}

func (r *MySQLBotSettingsRepository) SetActive(ctx context.Context, productID string, active bool) error {
	query := `UPDATE BotSettings SET botActive = ? WHERE productId = ?`

	result, err := r.db.ExecContext(ctx, query, active, productID)
	if err != nil {
		return fmt.Errorf("updating bot activation: %w", err)
	}

	return requireRow(result, productID)
}

func (r *MySQLBotSettingsRepository) UpdateSettings(ctx context.Context, cfg domain.PricingConfig) error {
	query := `
		UPDATE BotSettings
		SET strategy = ?, minProfit = ?, maxProfit = ?, step = ?
		WHERE productId = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		cfg.Strategy.String(), cfg.MinProfit, cfg.MaxProfit, cfg.Step, cfg.ProductID,
	)
	if err != nil {
		return fmt.Errorf("updating bot settings: %w", err)
	}

	return requireRow(result, cfg.ProductID)
}

// UpsertFromCatalog creates the settings row of a newly synced product, or
// refreshes the cost price of an existing one. Bot settings chosen by the
// seller are left untouched on conflict.
func (r *MySQLBotSettingsRepository) UpsertFromCatalog(ctx context.Context, cfg domain.PricingConfig) error {
	query := `
		INSERT INTO BotSettings (productId, costPrice, botActive, strategy, minProfit, maxProfit, step)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE costPrice = VALUES(costPrice)
	`

	_, err := r.db.ExecContext(ctx, query,
		cfg.ProductID, cfg.CostPrice, cfg.BotActive, cfg.Strategy.String(),
		cfg.MinProfit, cfg.MaxProfit, cfg.Step,
	)
	if err != nil {
		return fmt.Errorf("upserting bot settings: %w", err)
	}

	return nil
}

func (r *MySQLBotSettingsRepository) ListActive(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT productId FROM BotSettings WHERE botActive = 1 ORDER BY productId`)
	if err != nil {
		return nil, fmt.Errorf("querying active bots: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning active bot row: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating active bot rows: %w", err)
	}

	return ids, nil
}

func requireRow(result sql.Result, productID string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("bot settings for product %s not found", productID))
	}

	return nil
}
