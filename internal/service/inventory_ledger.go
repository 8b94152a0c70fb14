package service

import (
	"context"
	"fmt"

	"tech-kart/internal/model"
	"tech-kart/internal/repository"

	"github.com/rs/zerolog"
)

// Reservation is one atomic conditional stock decrement performed on behalf
// of a single variant for one checkout attempt.
type Reservation struct {
	VariantID string
	Quantity  int
}

// InventoryLedger owns per-variant stock mutation. All cross-request
// coordination happens in the storage layer's conditional update; the ledger
// holds no in-process state.
type InventoryLedger struct {
	catalog repository.CatalogRepository
	logger  zerolog.Logger
}

// NewInventoryLedger creates a new inventory ledger.
func NewInventoryLedger(catalog repository.CatalogRepository, logger zerolog.Logger) *InventoryLedger {
	return &InventoryLedger{
		catalog: catalog,
		logger:  logger.With().Str("service", "inventory-ledger").Logger(),
	}
}

// AggregateReservations sums cart lines that resolved to the same variant
// into a single reservation, in first-seen order. Two partial reservations of
// one variant could individually succeed yet jointly overshoot the stock, so
// the ledger is only ever asked once per variant. Lines without a variant ID
// never reach the ledger.
func AggregateReservations(lines []model.ResolvedLine) []Reservation {
	index := make(map[string]int, len(lines))
	reservations := make([]Reservation, 0, len(lines))

	for _, line := range lines {
		if line.VariantID == nil {
			continue
		}
		id := *line.VariantID
		if pos, ok := index[id]; ok {
			reservations[pos].Quantity += line.Quantity
			continue
		}
		index[id] = len(reservations)
		reservations = append(reservations, Reservation{VariantID: id, Quantity: line.Quantity})
	}

	return reservations
}

// Reserve atomically decrements a variant's stock, failing with
// InsufficientStock when a concurrent checkout won the race. Callers must not
// retry a failed reservation; the saga compensates and aborts instead.
func (l *InventoryLedger) Reserve(ctx context.Context, variantID string, quantity int) error {
	variant, err := l.catalog.ConditionalDecrementStock(ctx, variantID, quantity)
	if err != nil {
		return fmt.Errorf("stock reservation failed: %w", err)
	}
	if variant == nil {
		l.logger.Info().
			Str("variant_id", variantID).
			Int("quantity", quantity).
			Msg("reservation lost the race")
		return model.ErrInsufficientStock
	}

	l.logger.Debug().
		Str("variant_id", variantID).
		Int("quantity", quantity).
		Int("remaining", variant.Stock).
		Msg("stock reserved")

	l.syncInStock(ctx, variant)
	return nil
}

// Release is the compensation for Reserve: it adds back what was taken.
// Increments commute and re-adding is always safe, so Release never fails the
// surrounding compensation; problems are logged only.
func (l *InventoryLedger) Release(ctx context.Context, variantID string, quantity int) {
	variant, err := l.catalog.IncrementStock(ctx, variantID, quantity)
	if err != nil {
		l.logger.Error().Err(err).
			Str("variant_id", variantID).
			Int("quantity", quantity).
			Msg("stock release failed")
		return
	}
	if variant == nil {
		l.logger.Warn().
			Str("variant_id", variantID).
			Msg("stock release target no longer exists")
		return
	}

	l.logger.Debug().
		Str("variant_id", variantID).
		Int("quantity", quantity).
		Int("stock", variant.Stock).
		Msg("stock released")

	l.syncInStock(ctx, variant)
}

// syncInStock keeps the derived in_stock flag consistent with the new stock
// level. Best-effort: the flag is presentation state, the count is the truth.
func (l *InventoryLedger) syncInStock(ctx context.Context, variant *model.Variant) {
	inStock := variant.Stock > 0
	if variant.InStock == inStock {
		return
	}

	if err := l.catalog.SetInStockFlag(ctx, variant.ID, inStock); err != nil {
		l.logger.Warn().Err(err).
			Str("variant_id", variant.ID).
			Bool("in_stock", inStock).
			Msg("failed to sync in_stock flag")
	}
}
