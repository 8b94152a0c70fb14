package repository

import (
	"context"
	"fmt"

	"tech-kart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements OrderRepository using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// CreateOrder inserts an order and its line-item snapshots in a single
// database transaction. The saga's cross-step consistency is handled by
// compensation, not by this transaction; this only keeps an order from ever
// existing without its items.
func (r *orderRepository) CreateOrder(ctx context.Context, order *model.Order, items []model.OrderItem) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
				r.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	orderQuery := `
		INSERT INTO orders (
			id, customer_name, email, phone,
			address_line, city, state, postal_code, country,
			subtotal, tax, shipping, total, currency,
			payment_method, payment_status, status,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err = tx.Exec(ctx, orderQuery,
		order.ID, order.CustomerName, order.Email, order.Phone,
		order.AddressLine, order.City, order.State, order.PostalCode, order.Country,
		order.Subtotal, order.Tax, order.Shipping, order.Total, order.Currency,
		order.PaymentMethod, order.PaymentStatus, order.Status,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to insert order")
		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, name, variant_label, color, image_url, unit_price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(itemQuery,
			item.ID, item.OrderID, item.ProductID, item.Name,
			item.VariantLabel, item.Color, item.ImageURL, item.UnitPrice, item.Quantity,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < len(items); i++ {
		if _, execErr := results.Exec(); execErr != nil {
			_ = results.Close()
			err = execErr
			r.logger.Error().Err(err).
				Str("order_id", order.ID.String()).
				Str("product_id", items[i].ProductID).
				Msg("failed to insert order item")
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}
	if err = results.Close(); err != nil {
		return fmt.Errorf("failed to insert order items: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit order")
		return fmt.Errorf("failed to commit order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Int("item_count", len(items)).
		Msg("order persisted")

	return nil
}

// CreateTransaction inserts a payment transaction for an order.
func (r *orderRepository) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	query := `
		INSERT INTO transactions (
			id, order_id, amount, currency, payment_method, gateway, status,
			gateway_order_ref, gateway_payment_ref, raw_payload,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		txn.ID, txn.OrderID, txn.Amount, txn.Currency, txn.PaymentMethod, txn.Gateway, txn.Status,
		txn.GatewayOrderRef, txn.GatewayPaymentRef, txn.RawPayload,
		txn.CreatedAt, txn.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).
			Str("transaction_id", txn.ID.String()).
			Str("order_id", txn.OrderID.String()).
			Msg("failed to insert transaction")
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}

// FindOrderByID retrieves an order with its items.
func (r *orderRepository) FindOrderByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	orderQuery := `
		SELECT id, customer_name, email, phone,
		       address_line, city, state, postal_code, country,
		       subtotal, tax, shipping, total, currency,
		       payment_method, payment_status, status,
		       gateway_order_ref, gateway_payment_ref, signature,
		       created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	var order model.Order
	err := r.pool.QueryRow(ctx, orderQuery, id).Scan(
		&order.ID, &order.CustomerName, &order.Email, &order.Phone,
		&order.AddressLine, &order.City, &order.State, &order.PostalCode, &order.Country,
		&order.Subtotal, &order.Tax, &order.Shipping, &order.Total, &order.Currency,
		&order.PaymentMethod, &order.PaymentStatus, &order.Status,
		&order.GatewayOrderRef, &order.GatewayPaymentRef, &order.Signature,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, nil, fmt.Errorf("failed to query order: %w", err)
	}

	itemsQuery := `
		SELECT id, order_id, product_id, name, variant_label, color, image_url, unit_price, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, itemsQuery, id)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order items")
		return nil, nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Name,
			&item.VariantLabel, &item.Color, &item.ImageURL, &item.UnitPrice, &item.Quantity,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return &order, items, nil
}

// UpdateOrderPayment patches the payment-owned fields of an order. Nil
// pointer fields keep their stored values, so re-applying the same patch is
// harmless.
func (r *orderRepository) UpdateOrderPayment(ctx context.Context, id uuid.UUID, patch model.OrderPaymentPatch) error {
	query := `
		UPDATE orders
		SET payment_status = $2,
		    gateway_order_ref = COALESCE($3, gateway_order_ref),
		    gateway_payment_ref = COALESCE($4, gateway_payment_ref),
		    signature = COALESCE($5, signature),
		    updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id,
		patch.PaymentStatus, patch.GatewayOrderRef, patch.GatewayPaymentRef, patch.Signature,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order payment")
		return fmt.Errorf("failed to update order payment: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s not found for payment update", id)
	}

	return nil
}

// UpdateLatestTransactionForOrder patches the most recent transaction for an
// order. Older transactions keep their terminal state as the audit trail of
// earlier attempts.
func (r *orderRepository) UpdateLatestTransactionForOrder(ctx context.Context, orderID uuid.UUID, patch model.TransactionPatch) error {
	query := `
		UPDATE transactions
		SET status = $2,
		    gateway_order_ref = COALESCE($3, gateway_order_ref),
		    gateway_payment_ref = COALESCE($4, gateway_payment_ref),
		    raw_payload = COALESCE($5, raw_payload),
		    updated_at = NOW()
		WHERE id = (
			SELECT id FROM transactions
			WHERE order_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		)
	`

	tag, err := r.pool.Exec(ctx, query, orderID,
		patch.Status, patch.GatewayOrderRef, patch.GatewayPaymentRef, patch.RawPayload,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to update latest transaction")
		return fmt.Errorf("failed to update latest transaction: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no transaction found for order %s", orderID)
	}

	return nil
}

// DeleteOrder removes an order; order_items cascade.
func (r *orderRepository) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to delete order")
		return fmt.Errorf("failed to delete order: %w", err)
	}

	r.logger.Debug().Str("order_id", id.String()).Msg("order deleted")
	return nil
}

// DeleteTransaction removes a single transaction.
func (r *orderRepository) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("transaction_id", id.String()).Msg("failed to delete transaction")
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	r.logger.Debug().Str("transaction_id", id.String()).Msg("transaction deleted")
	return nil
}
