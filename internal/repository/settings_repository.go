package repository

import (
	"context"
	"fmt"

	"tech-kart/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// settingsRepository implements SettingsRepository using PostgreSQL. The
// store keeps a single settings row; its absence means tax and shipping are
// both disabled.
type settingsRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewSettingsRepository creates a new PostgreSQL-backed settings repository.
func NewSettingsRepository(pool *pgxpool.Pool, logger zerolog.Logger) SettingsRepository {
	return &settingsRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "settings").Logger(),
	}
}

func (r *settingsRepository) GetTaxConfig(ctx context.Context) (model.TaxConfig, error) {
	query := `
		SELECT tax_enabled, tax_rate_percent
		FROM store_settings
		ORDER BY id
		LIMIT 1
	`

	var cfg model.TaxConfig
	err := r.pool.QueryRow(ctx, query).Scan(&cfg.Enabled, &cfg.RatePercent)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Msg("no store settings row, tax disabled")
			return model.TaxConfig{}, nil
		}
		r.logger.Error().Err(err).Msg("failed to query tax config")
		return model.TaxConfig{}, fmt.Errorf("failed to query tax config: %w", err)
	}

	return cfg, nil
}

func (r *settingsRepository) GetShippingConfig(ctx context.Context) (model.ShippingConfig, error) {
	query := `
		SELECT shipping_enabled, shipping_flat_amount
		FROM store_settings
		ORDER BY id
		LIMIT 1
	`

	var cfg model.ShippingConfig
	err := r.pool.QueryRow(ctx, query).Scan(&cfg.Enabled, &cfg.FlatAmount)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Msg("no store settings row, shipping disabled")
			return model.ShippingConfig{}, nil
		}
		r.logger.Error().Err(err).Msg("failed to query shipping config")
		return model.ShippingConfig{}, fmt.Errorf("failed to query shipping config: %w", err)
	}

	return cfg, nil
}
