package repository

import (
	"context"
	"fmt"

	"tech-kart/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// catalogRepository implements CatalogRepository using PostgreSQL.
type catalogRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCatalogRepository creates a new PostgreSQL-backed catalog repository.
func NewCatalogRepository(pool *pgxpool.Pool, logger zerolog.Logger) CatalogRepository {
	return &catalogRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "catalog").Logger(),
	}
}

// FindProductsByIDs retrieves the products matching the given IDs.
func (r *catalogRepository) FindProductsByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := `
		SELECT id, name, category, condition, image_url, created_at
		FROM products
		WHERE id = ANY($1)
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, fmt.Errorf("failed to query products by IDs: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Condition, &p.ImageURL, &p.CreatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// FindVariantsByProductIDs retrieves all variants belonging to the given
// products, ordered by price ascending then ID for a deterministic default
// pick downstream.
func (r *catalogRepository) FindVariantsByProductIDs(ctx context.Context, productIDs []string) ([]model.Variant, error) {
	if len(productIDs) == 0 {
		return []model.Variant{}, nil
	}

	query := `
		SELECT id, product_id, label, price, stock, in_stock, is_default, created_at
		FROM variants
		WHERE product_id = ANY($1)
		ORDER BY price, id
	`

	rows, err := r.pool.Query(ctx, query, productIDs)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(productIDs)).Msg("failed to query variants")
		return nil, fmt.Errorf("failed to query variants: %w", err)
	}
	defer rows.Close()

	var variants []model.Variant
	for rows.Next() {
		var v model.Variant
		err := rows.Scan(&v.ID, &v.ProductID, &v.Label, &v.Price, &v.Stock, &v.InStock, &v.IsDefault, &v.CreatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan variant row")
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		variants = append(variants, v)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating variant rows")
		return nil, fmt.Errorf("error iterating variants: %w", err)
	}

	return variants, nil
}

// ConditionalDecrementStock performs the compare-and-swap stock reservation.
// The WHERE clause carries the condition, so two concurrent checkouts for the
// last unit get exactly one winner; the loser sees zero rows updated.
func (r *catalogRepository) ConditionalDecrementStock(ctx context.Context, variantID string, quantity int) (*model.Variant, error) {
	query := `
		UPDATE variants
		SET stock = stock - $2
		WHERE id = $1 AND stock >= $2
		RETURNING id, product_id, label, price, stock, in_stock, is_default, created_at
	`

	var v model.Variant
	err := r.pool.QueryRow(ctx, query, variantID, quantity).Scan(
		&v.ID, &v.ProductID, &v.Label, &v.Price, &v.Stock, &v.InStock, &v.IsDefault, &v.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().
				Str("variant_id", variantID).
				Int("quantity", quantity).
				Msg("conditional decrement rejected")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("variant_id", variantID).Msg("failed to decrement stock")
		return nil, fmt.Errorf("failed to decrement stock: %w", err)
	}

	return &v, nil
}

// IncrementStock adds quantity back to a variant's stock. Used as the
// compensation for a reservation, so it never carries a condition.
func (r *catalogRepository) IncrementStock(ctx context.Context, variantID string, quantity int) (*model.Variant, error) {
	query := `
		UPDATE variants
		SET stock = stock + $2
		WHERE id = $1
		RETURNING id, product_id, label, price, stock, in_stock, is_default, created_at
	`

	var v model.Variant
	err := r.pool.QueryRow(ctx, query, variantID, quantity).Scan(
		&v.ID, &v.ProductID, &v.Label, &v.Price, &v.Stock, &v.InStock, &v.IsDefault, &v.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Warn().Str("variant_id", variantID).Msg("increment target variant not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("variant_id", variantID).Msg("failed to increment stock")
		return nil, fmt.Errorf("failed to increment stock: %w", err)
	}

	return &v, nil
}

// SetInStockFlag persists the derived in_stock flag for a variant.
func (r *catalogRepository) SetInStockFlag(ctx context.Context, variantID string, inStock bool) error {
	query := `
		UPDATE variants
		SET in_stock = $2
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, variantID, inStock)
	if err != nil {
		r.logger.Error().Err(err).
			Str("variant_id", variantID).
			Bool("in_stock", inStock).
			Msg("failed to update in_stock flag")
		return fmt.Errorf("failed to update in_stock flag: %w", err)
	}

	return nil
}
