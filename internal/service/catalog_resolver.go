package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"tech-kart/internal/model"
	"tech-kart/internal/repository"

	"github.com/rs/zerolog"
)

// CatalogResolver turns caller-supplied cart lines into concrete priced,
// stocked variants. Pure read; the authoritative stock check happens later in
// the inventory ledger.
type CatalogResolver struct {
	catalog repository.CatalogRepository
	logger  zerolog.Logger
}

// NewCatalogResolver creates a new catalog resolver.
func NewCatalogResolver(catalog repository.CatalogRepository, logger zerolog.Logger) *CatalogResolver {
	return &CatalogResolver{
		catalog: catalog,
		logger:  logger.With().Str("service", "catalog-resolver").Logger(),
	}
}

// Resolve maps each cart line to a resolved line. Prices always come from the
// variant records, never from the request.
func (r *CatalogResolver) Resolve(ctx context.Context, lines []model.CartLine) ([]model.ResolvedLine, error) {
	productIDs := distinctProductIDs(lines)

	products, err := r.catalog.FindProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	// Batch existence check: any missing ID shows up as a count mismatch.
	if len(products) != len(productIDs) {
		r.logger.Warn().
			Int("requested", len(productIDs)).
			Int("found", len(products)).
			Msg("cart references unknown products")
		return nil, model.ErrProductNotFound
	}

	productsByID := make(map[string]model.Product, len(products))
	for _, p := range products {
		productsByID[p.ID] = p
	}

	variants, err := r.catalog.FindVariantsByProductIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load variants: %w", err)
	}

	variantsByProduct := make(map[string][]model.Variant, len(productIDs))
	for _, id := range productIDs {
		variantsByProduct[id] = nil
	}
	for _, v := range variants {
		variantsByProduct[v.ProductID] = append(variantsByProduct[v.ProductID], v)
	}
	for id, set := range variantsByProduct {
		variantsByProduct[id] = normalizeVariants(id, set)
	}

	resolved := make([]model.ResolvedLine, 0, len(lines))
	for _, line := range lines {
		product := productsByID[line.ProductID]

		variant, err := r.matchVariant(variantsByProduct[line.ProductID], line)
		if err != nil {
			return nil, err
		}

		// Advisory gate only. The race between this read and the decrement
		// is closed by the ledger's conditional update.
		if !variant.InStock || variant.Stock <= 0 {
			r.logger.Debug().
				Str("product_id", line.ProductID).
				Str("variant", variant.Label).
				Msg("variant out of stock")
			return nil, model.ErrOutOfStock
		}
		if line.Quantity > variant.Stock {
			r.logger.Debug().
				Str("product_id", line.ProductID).
				Str("variant", variant.Label).
				Int("requested", line.Quantity).
				Int("stock", variant.Stock).
				Msg("insufficient stock at resolution")
			return nil, model.ErrInsufficientStock
		}

		var variantID *string
		if variant.ID != "" {
			id := variant.ID
			variantID = &id
		}

		var color string
		if line.Color != nil {
			color = *line.Color
		}

		resolved = append(resolved, model.ResolvedLine{
			ProductID:    product.ID,
			VariantID:    variantID,
			Name:         product.Name,
			Category:     product.Category,
			Condition:    product.Condition,
			ImageURL:     product.ImageURL,
			VariantLabel: variant.Label,
			Color:        color,
			UnitPrice:    variant.Price,
			Quantity:     line.Quantity,
		})
	}

	return resolved, nil
}

// matchVariant picks the variant for a cart line: an explicit label is
// matched case-insensitively; otherwise the default variant wins, falling
// back to the first (cheapest) one.
func (r *CatalogResolver) matchVariant(variants []model.Variant, line model.CartLine) (model.Variant, error) {
	if line.VariantLabel != nil && *line.VariantLabel != "" {
		for _, v := range variants {
			if strings.EqualFold(v.Label, *line.VariantLabel) {
				return v, nil
			}
		}
		r.logger.Debug().
			Str("product_id", line.ProductID).
			Str("requested_variant", *line.VariantLabel).
			Msg("no variant matches requested label")
		return model.Variant{}, model.ErrInvalidVariant
	}

	for _, v := range variants {
		if v.IsDefault {
			return v, nil
		}
	}

	// Variants arrive price-ascending, so the first is the cheapest.
	return variants[0], nil
}

// normalizeVariants filters out malformed records and deduplicates labels
// case-insensitively, keeping the first occurrence. A product with no usable
// variants gets a single synthetic fallback so callers never handle an empty
// set.
func normalizeVariants(productID string, variants []model.Variant) []model.Variant {
	seen := make(map[string]bool, len(variants))
	cleaned := make([]model.Variant, 0, len(variants))

	for _, v := range variants {
		if v.Label == "" {
			continue
		}
		if v.Price < 0 || math.IsNaN(v.Price) || math.IsInf(v.Price, 0) {
			continue
		}
		key := strings.ToLower(v.Label)
		if seen[key] {
			continue
		}
		seen[key] = true
		cleaned = append(cleaned, v)
	}

	if len(cleaned) == 0 {
		cleaned = append(cleaned, model.Variant{
			ProductID: productID,
			Label:     model.FallbackVariantLabel,
			Price:     0,
			Stock:     0,
			InStock:   false,
		})
	}

	return cleaned
}

// distinctProductIDs returns the unique product IDs in first-seen order.
func distinctProductIDs(lines []model.CartLine) []string {
	seen := make(map[string]bool, len(lines))
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		if !seen[line.ProductID] {
			seen[line.ProductID] = true
			ids = append(ids, line.ProductID)
		}
	}
	return ids
}
