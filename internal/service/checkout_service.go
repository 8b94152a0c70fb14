package service

import (
	"context"
	"time"

	"tech-kart/internal/audit"
	"tech-kart/internal/gateway"
	"tech-kart/internal/model"
	"tech-kart/internal/notification"
	"tech-kart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Options carries the store-level settings the checkout service needs.
type Options struct {
	Currency        string
	GatewayName     string
	SignatureSecret string
}

// checkoutService implements CheckoutService. It coordinates the checkout
// saga: a linear sequence of steps where every failure after stock
// reservation triggers full compensation before the error is surfaced, so a
// caller never observes decremented stock without a matching order.
type checkoutService struct {
	resolver *CatalogResolver
	ledger   *InventoryLedger
	orders   repository.OrderRepository
	settings repository.SettingsRepository
	gateway  gateway.Client
	notifier notification.Sender
	archiver audit.Archiver
	opts     Options
	logger   zerolog.Logger
}

// NewCheckoutService creates the checkout service with all collaborators.
func NewCheckoutService(
	catalogRepo repository.CatalogRepository,
	orderRepo repository.OrderRepository,
	settingsRepo repository.SettingsRepository,
	gatewayClient gateway.Client,
	notifier notification.Sender,
	archiver audit.Archiver,
	opts Options,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		resolver: NewCatalogResolver(catalogRepo, logger),
		ledger:   NewInventoryLedger(catalogRepo, logger),
		orders:   orderRepo,
		settings: settingsRepo,
		gateway:  gatewayClient,
		notifier: notifier,
		archiver: archiver,
		opts:     opts,
		logger:   logger.With().Str("service", "checkout").Logger(),
	}
}

// PlaceOrder runs the checkout saga.
func (s *checkoutService) PlaceOrder(ctx context.Context, req *model.CheckoutRequest) (*model.CheckoutResponse, error) {
	if err := validateCheckoutRequest(req); err != nil {
		return nil, err
	}

	// Step 1: resolve. No compensation needed yet.
	resolved, err := s.resolver.Resolve(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	// Step 2: price. Store settings are read per request and passed in
	// explicitly; the pricing engine never consults ambient state.
	taxCfg, err := s.settings.GetTaxConfig(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load tax config")
		return nil, model.ErrPersistenceFailure
	}
	shipCfg, err := s.settings.GetShippingConfig(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load shipping config")
		return nil, model.ErrPersistenceFailure
	}

	totals, err := PriceCart(resolved, taxCfg, shipCfg)
	if err != nil {
		return nil, err
	}

	// Step 3: reserve stock, one conditional decrement per distinct variant.
	// Track what succeeded so a later failure can put it all back.
	reserved := make([]Reservation, 0, len(resolved))
	for _, res := range AggregateReservations(resolved) {
		if err := s.ledger.Reserve(ctx, res.VariantID, res.Quantity); err != nil {
			s.compensate(ctx, reserved)
			if isDomainError(err) {
				return nil, err
			}
			s.logger.Error().Err(err).Str("variant_id", res.VariantID).Msg("reservation failed")
			return nil, model.ErrPersistenceFailure
		}
		reserved = append(reserved, res)
	}

	// Step 4: persist the order and its pending transaction.
	now := time.Now()
	order := buildOrder(req, totals, s.opts.Currency, now)
	items := buildOrderItems(order.ID, resolved)

	if err := s.orders.CreateOrder(ctx, order, items); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to persist order")
		s.compensate(ctx, reserved)
		return nil, model.ErrPersistenceFailure
	}

	txn := &model.Transaction{
		ID:            uuid.New(),
		OrderID:       order.ID,
		Amount:        totals.Total,
		Currency:      s.opts.Currency,
		PaymentMethod: req.PaymentMethod,
		Gateway:       s.transactionGateway(req.PaymentMethod),
		Status:        model.PaymentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.orders.CreateTransaction(ctx, txn); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to persist transaction")
		s.deleteRecords(ctx, order.ID, uuid.Nil)
		s.compensate(ctx, reserved)
		return nil, model.ErrPersistenceFailure
	}

	resp := &model.CheckoutResponse{
		OrderID:       order.ID,
		TransactionID: txn.ID,
		Totals:        totals,
		Currency:      s.opts.Currency,
		PaymentMethod: req.PaymentMethod,
	}

	// Step 5: cash on delivery completes here.
	if req.PaymentMethod == model.PaymentMethodCOD {
		s.logger.Info().
			Str("order_id", order.ID.String()).
			Float64("total", totals.Total).
			Msg("COD order placed")
		s.dispatchConfirmation(order)
		return resp, nil
	}

	// Step 6: online payment needs a gateway-side intent sized to the total.
	intent, err := s.gateway.CreateIntent(ctx, MinorUnits(totals.Total), s.opts.Currency, order.ID.String(), map[string]string{
		"order_id": order.ID.String(),
	})
	if err != nil {
		// An order with no valid payment path is not a real order: the rows
		// are removed outright, not just marked, and the stock goes back.
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("gateway intent creation failed")
		s.deleteRecords(ctx, order.ID, txn.ID)
		s.compensate(ctx, reserved)
		return nil, model.ErrGatewayError
	}

	intentRef := intent.ID
	orderPatch := model.OrderPaymentPatch{
		PaymentStatus:   model.PaymentStatusPending,
		GatewayOrderRef: &intentRef,
	}
	txnPatch := model.TransactionPatch{
		Status:          model.PaymentStatusPending,
		GatewayOrderRef: &intentRef,
	}
	if err := s.orders.UpdateOrderPayment(ctx, order.ID, orderPatch); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to store gateway reference")
		s.deleteRecords(ctx, order.ID, txn.ID)
		s.compensate(ctx, reserved)
		return nil, model.ErrPersistenceFailure
	}
	if err := s.orders.UpdateLatestTransactionForOrder(ctx, order.ID, txnPatch); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to store gateway reference on transaction")
		s.deleteRecords(ctx, order.ID, txn.ID)
		s.compensate(ctx, reserved)
		return nil, model.ErrPersistenceFailure
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("intent_id", intent.ID).
		Float64("total", totals.Total).
		Msg("online order placed, awaiting payment")

	s.dispatchConfirmation(order)

	resp.Gateway = &model.GatewayCheckout{
		IntentID:  intent.ID,
		Amount:    intent.Amount,
		Currency:  intent.Currency,
		PublicKey: s.gateway.PublicKey(),
	}
	return resp, nil
}

// GetOrderByID retrieves an order with its line-item snapshots.
func (s *checkoutService) GetOrderByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	order, items, err := s.orders.FindOrderByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to load order")
		return nil, model.ErrPersistenceFailure
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	return &model.OrderResponse{Order: *order, Items: items}, nil
}

// compensate releases every reservation made so far. Runs on a detached
// context: once the saga has started mutating stock it must reach a terminal
// state even if the caller has disconnected.
func (s *checkoutService) compensate(ctx context.Context, reserved []Reservation) {
	if len(reserved) == 0 {
		return
	}

	ctx = context.WithoutCancel(ctx)
	for _, res := range reserved {
		s.ledger.Release(ctx, res.VariantID, res.Quantity)
	}

	s.logger.Info().Int("reservations", len(reserved)).Msg("checkout compensated, stock restored")
}

// deleteRecords removes the order/transaction rows created by a saga run
// whose payment path failed. Also on a detached context; failures are logged
// because there is no further recovery step.
func (s *checkoutService) deleteRecords(ctx context.Context, orderID, txnID uuid.UUID) {
	ctx = context.WithoutCancel(ctx)

	if txnID != uuid.Nil {
		if err := s.orders.DeleteTransaction(ctx, txnID); err != nil {
			s.logger.Error().Err(err).Str("transaction_id", txnID.String()).Msg("failed to delete transaction during rollback")
		}
	}
	if err := s.orders.DeleteOrder(ctx, orderID); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to delete order during rollback")
	}
}

// dispatchConfirmation sends the order confirmation on a detached goroutine
// after the saga's terminal state is committed. Delivery failure can never
// affect the checkout outcome.
func (s *checkoutService) dispatchConfirmation(order *model.Order) {
	if s.notifier == nil {
		return
	}

	msg := notification.OrderConfirmation{
		OrderID:       order.ID.String(),
		CustomerName:  order.CustomerName,
		Email:         order.Email,
		Total:         order.Total,
		Currency:      order.Currency,
		PaymentMethod: order.PaymentMethod,
	}

	logger := s.logger
	notifier := s.notifier
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := notifier.SendOrderConfirmation(ctx, msg); err != nil {
			logger.Warn().Err(err).Str("order_id", msg.OrderID).Msg("order confirmation delivery failed")
		}
	}()
}

func (s *checkoutService) transactionGateway(paymentMethod string) string {
	if paymentMethod == model.PaymentMethodOnline {
		return s.opts.GatewayName
	}
	return model.PaymentMethodCOD
}

// validateCheckoutRequest rejects malformed requests before the saga starts.
func validateCheckoutRequest(req *model.CheckoutRequest) error {
	if req == nil || len(req.Items) == 0 {
		return model.ErrMissingField
	}

	if req.Customer.Name == "" || req.Customer.Email == "" {
		return model.ErrMissingField
	}
	if req.Address.Line == "" || req.Address.City == "" {
		return model.ErrMissingField
	}

	for _, item := range req.Items {
		if item.ProductID == "" {
			return model.ErrMissingField
		}
		if item.Quantity < 1 {
			return model.ErrInvalidQuantity
		}
	}

	if req.PaymentMethod != model.PaymentMethodCOD && req.PaymentMethod != model.PaymentMethodOnline {
		return model.ErrInvalidPaymentMethod
	}

	return nil
}

// buildOrder assembles the order row for a validated, priced checkout.
func buildOrder(req *model.CheckoutRequest, totals model.CartTotals, currency string, now time.Time) *model.Order {
	return &model.Order{
		ID:            uuid.New(),
		CustomerName:  req.Customer.Name,
		Email:         req.Customer.Email,
		Phone:         req.Customer.Phone,
		AddressLine:   req.Address.Line,
		City:          req.Address.City,
		State:         req.Address.State,
		PostalCode:    req.Address.PostalCode,
		Country:       req.Address.Country,
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		Shipping:      totals.Shipping,
		Total:         totals.Total,
		Currency:      currency,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: model.PaymentStatusPending,
		Status:        model.OrderStatusPlaced,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// buildOrderItems freezes the resolved lines into order-item snapshots.
func buildOrderItems(orderID uuid.UUID, resolved []model.ResolvedLine) []model.OrderItem {
	items := make([]model.OrderItem, len(resolved))
	for i, line := range resolved {
		items[i] = model.OrderItem{
			ID:           uuid.New(),
			OrderID:      orderID,
			ProductID:    line.ProductID,
			Name:         line.Name,
			VariantLabel: line.VariantLabel,
			Color:        line.Color,
			ImageURL:     line.ImageURL,
			UnitPrice:    line.UnitPrice,
			Quantity:     line.Quantity,
		}
	}
	return items
}
