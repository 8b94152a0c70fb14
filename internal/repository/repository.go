package repository

import (
	"context"

	"tech-kart/internal/model"

	"github.com/google/uuid"
)

// CatalogRepository defines read access to the catalogue plus the two atomic
// stock mutations the inventory ledger is built on.
type CatalogRepository interface {
	// FindProductsByIDs retrieves the products matching the given IDs.
	// Missing IDs are simply absent from the result.
	FindProductsByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// FindVariantsByProductIDs retrieves all variants belonging to the given
	// products, ordered by price ascending then ID.
	FindVariantsByProductIDs(ctx context.Context, productIDs []string) ([]model.Variant, error)

	// ConditionalDecrementStock atomically decrements a variant's stock by
	// quantity only if the current stock covers it. Returns the updated
	// variant, or nil when the condition failed (a concurrent checkout won
	// the race).
	ConditionalDecrementStock(ctx context.Context, variantID string, quantity int) (*model.Variant, error)

	// IncrementStock atomically adds quantity back to a variant's stock.
	// Returns the updated variant, or nil if the variant no longer exists.
	IncrementStock(ctx context.Context, variantID string, quantity int) (*model.Variant, error)

	// SetInStockFlag persists the derived in_stock flag for a variant.
	SetInStockFlag(ctx context.Context, variantID string, inStock bool) error
}

// OrderRepository defines data access for orders and their payment
// transactions. Orders and transactions are created together during checkout
// but remain independently addressable.
type OrderRepository interface {
	// CreateOrder inserts an order and its line-item snapshots atomically.
	CreateOrder(ctx context.Context, order *model.Order, items []model.OrderItem) error

	// CreateTransaction inserts a payment transaction for an order.
	CreateTransaction(ctx context.Context, txn *model.Transaction) error

	// FindOrderByID retrieves an order with its items. Returns (nil, nil, nil)
	// when the order does not exist.
	FindOrderByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// UpdateOrderPayment patches the payment-owned fields of an order.
	UpdateOrderPayment(ctx context.Context, id uuid.UUID, patch model.OrderPaymentPatch) error

	// UpdateLatestTransactionForOrder patches the most recent transaction
	// belonging to the given order.
	UpdateLatestTransactionForOrder(ctx context.Context, orderID uuid.UUID, patch model.TransactionPatch) error

	// DeleteOrder removes an order and, via cascade, its line items.
	DeleteOrder(ctx context.Context, id uuid.UUID) error

	// DeleteTransaction removes a single transaction.
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
}

// SettingsRepository reads the store-wide pricing configuration.
type SettingsRepository interface {
	// GetTaxConfig returns the tax settings, or disabled defaults when no
	// settings row exists.
	GetTaxConfig(ctx context.Context) (model.TaxConfig, error)

	// GetShippingConfig returns the shipping settings, or disabled defaults
	// when no settings row exists.
	GetShippingConfig(ctx context.Context) (model.ShippingConfig, error)
}
