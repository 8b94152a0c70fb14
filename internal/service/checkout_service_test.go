package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"tech-kart/internal/gateway"
	"tech-kart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	catalog  *MockCatalogRepository
	orders   *MockOrderRepository
	settings *MockSettingsRepository
	gateway  *MockGatewayClient
	sender   *recordingSender
	service  CheckoutService
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	f := &checkoutFixture{
		catalog:  new(MockCatalogRepository),
		orders:   new(MockOrderRepository),
		settings: new(MockSettingsRepository),
		gateway:  new(MockGatewayClient),
		sender:   newRecordingSender(nil),
	}
	f.service = NewCheckoutService(
		f.catalog, f.orders, f.settings, f.gateway, f.sender, nil,
		Options{Currency: "INR", GatewayName: "razorpay", SignatureSecret: "test-secret"},
		zerolog.Nop(),
	)
	return f
}

// stubSettings wires the store settings used by most saga tests: 18% tax,
// shipping disabled.
func (f *checkoutFixture) stubSettings() {
	f.settings.On("GetTaxConfig", mock.Anything).
		Return(model.TaxConfig{Enabled: true, RatePercent: 18}, nil)
	f.settings.On("GetShippingConfig", mock.Anything).
		Return(model.ShippingConfig{Enabled: false}, nil)
}

// stubCatalog wires a single product with a single in-stock variant.
func (f *checkoutFixture) stubCatalog(stock int) {
	f.catalog.On("FindProductsByIDs", mock.Anything, []string{"P1"}).
		Return([]model.Product{testProduct("P1", "ThinkPad X1")}, nil)
	f.catalog.On("FindVariantsByProductIDs", mock.Anything, []string{"P1"}).
		Return([]model.Variant{
			{ID: "V1", ProductID: "P1", Label: "8GB / 256GB", Price: 500, Stock: stock, InStock: stock > 0, IsDefault: true},
		}, nil)
}

func validRequest(paymentMethod string) *model.CheckoutRequest {
	return &model.CheckoutRequest{
		Customer: model.Customer{Name: "Asha Rao", Email: "asha@example.com", Phone: "9876543210"},
		Address: model.Address{
			Line: "12 MG Road", City: "Bengaluru", State: "KA", PostalCode: "560001", Country: "IN",
		},
		Items:         []model.CartLine{{ProductID: "P1", Quantity: 2}},
		PaymentMethod: paymentMethod,
	}
}

func awaitConfirmation(t *testing.T, f *checkoutFixture) {
	t.Helper()
	select {
	case msg := <-f.sender.ch:
		assert.NotEmpty(t, msg.OrderID)
	case <-time.After(2 * time.Second):
		t.Fatal("order confirmation was not dispatched")
	}
}

func TestPlaceOrder_CODHappyPath(t *testing.T) {
	f := newCheckoutFixture(t)
	f.stubSettings()
	f.stubCatalog(5)

	f.catalog.On("ConditionalDecrementStock", mock.Anything, "V1", 2).
		Return(&model.Variant{ID: "V1", Stock: 3, InStock: true}, nil).Once()
	f.orders.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	f.orders.On("CreateTransaction", mock.Anything, mock.Anything).Return(nil).Once()

	resp, err := f.service.PlaceOrder(context.Background(), validRequest(model.PaymentMethodCOD))

	require.NoError(t, err)
	assert.Equal(t, 1000.00, resp.Totals.Subtotal)
	assert.Equal(t, 180.00, resp.Totals.Tax)
	assert.Equal(t, 0.00, resp.Totals.Shipping)
	assert.Equal(t, 1180.00, resp.Totals.Total)
	assert.Equal(t, "INR", resp.Currency)
	assert.Equal(t, model.PaymentMethodCOD, resp.PaymentMethod)
	assert.Nil(t, resp.Gateway)
	assert.NotEqual(t, uuid.Nil, resp.OrderID)
	assert.NotEqual(t, uuid.Nil, resp.TransactionID)

	// COD never talks to the gateway.
	f.gateway.AssertNotCalled(t, "CreateIntent")
	f.orders.AssertExpectations(t)
	f.catalog.AssertExpectations(t)

	awaitConfirmation(t, f)
}

func TestPlaceOrder_OnlineHappyPath(t *testing.T) {
	f := newCheckoutFixture(t)
	f.stubSettings()
	f.stubCatalog(5)

	f.catalog.On("ConditionalDecrementStock", mock.Anything, "V1", 2).
		Return(&model.Variant{ID: "V1", Stock: 3, InStock: true}, nil).Once()
	f.orders.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	f.orders.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(txn *model.Transaction) bool {
		return txn.Gateway == "razorpay" && txn.Status == model.PaymentStatusPending && txn.Amount == 1180.00
	})).Return(nil).Once()
	// The intent is sized in minor units of the rounded total.
	f.gateway.On("CreateIntent", mock.Anything, int64(118000), "INR", mock.Anything, mock.Anything).
		Return(&gateway.PaymentIntent{ID: "intent_123", Amount: 118000, Currency: "INR"}, nil).Once()
	f.gateway.On("PublicKey").Return("rzp_test_key")
	f.orders.On("UpdateOrderPayment", mock.Anything, mock.Anything, mock.MatchedBy(func(p model.OrderPaymentPatch) bool {
		return p.PaymentStatus == model.PaymentStatusPending && p.GatewayOrderRef != nil && *p.GatewayOrderRef == "intent_123"
	})).Return(nil).Once()
	f.orders.On("UpdateLatestTransactionForOrder", mock.Anything, mock.Anything, mock.MatchedBy(func(p model.TransactionPatch) bool {
		return p.GatewayOrderRef != nil && *p.GatewayOrderRef == "intent_123"
	})).Return(nil).Once()

	resp, err := f.service.PlaceOrder(context.Background(), validRequest(model.PaymentMethodOnline))

	require.NoError(t, err)
	require.NotNil(t, resp.Gateway)
	assert.Equal(t, "intent_123", resp.Gateway.IntentID)
	assert.Equal(t, int64(118000), resp.Gateway.Amount)
	assert.Equal(t, "rzp_test_key", resp.Gateway.PublicKey)

	f.orders.AssertExpectations(t)
	f.gateway.AssertExpectations(t)

	awaitConfirmation(t, f)
}

func TestPlaceOrder_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*model.CheckoutRequest)
		wantErr error
	}{
		{
			name:    "empty cart",
			mutate:  func(r *model.CheckoutRequest) { r.Items = nil },
			wantErr: model.ErrMissingField,
		},
		{
			name:    "missing customer name",
			mutate:  func(r *model.CheckoutRequest) { r.Customer.Name = "" },
			wantErr: model.ErrMissingField,
		},
		{
			name:    "missing email",
			mutate:  func(r *model.CheckoutRequest) { r.Customer.Email = "" },
			wantErr: model.ErrMissingField,
		},
		{
			name:    "missing address line",
			mutate:  func(r *model.CheckoutRequest) { r.Address.Line = "" },
			wantErr: model.ErrMissingField,
		},
		{
			name:    "missing product id",
			mutate:  func(r *model.CheckoutRequest) { r.Items[0].ProductID = "" },
			wantErr: model.ErrMissingField,
		},
		{
			name:    "zero quantity",
			mutate:  func(r *model.CheckoutRequest) { r.Items[0].Quantity = 0 },
			wantErr: model.ErrInvalidQuantity,
		},
		{
			name:    "negative quantity",
			mutate:  func(r *model.CheckoutRequest) { r.Items[0].Quantity = -1 },
			wantErr: model.ErrInvalidQuantity,
		},
		{
			name:    "unknown payment method",
			mutate:  func(r *model.CheckoutRequest) { r.PaymentMethod = "bitcoin" },
			wantErr: model.ErrInvalidPaymentMethod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCheckoutFixture(t)
			req := validRequest(model.PaymentMethodCOD)
			tt.mutate(req)

			_, err := f.service.PlaceOrder(context.Background(), req)

			assert.Equal(t, tt.wantErr, err)
			f.catalog.AssertNotCalled(t, "FindProductsByIDs")
		})
	}
}

func TestPlaceOrder_InsufficientStockAtResolution(t *testing.T) {
	f := newCheckoutFixture(t)
	f.stubCatalog(1)

	// Quantity 2 against stock 1: the advisory gate rejects before any
	// decrement is attempted.
	_, err := f.service.PlaceOrder(context.Background(), validRequest(model.PaymentMethodCOD))

	assert.Equal(t, model.ErrInsufficientStock, err)
	f.catalog.AssertNotCalled(t, "ConditionalDecrementStock")
	f.orders.AssertNotCalled(t, "CreateOrder")
}

func TestPlaceOrder_LostReservationRaceReleasesEarlierReservations(t *testing.T) {
	f := newCheckoutFixture(t)
	f.stubSettings()

	f.catalog.On("FindProductsByIDs", mock.Anything, []string{"P1", "P2"}).
		Return([]model.Product{testProduct("P1", "ThinkPad X1"), testProduct("P2", "MacBook Air")}, nil)
	f.catalog.On("FindVariantsByProductIDs", mock.Anything, []string{"P1", "P2"}).
		Return([]model.Variant{
			{ID: "V1", ProductID: "P1", Label: "8GB / 256GB", Price: 500, Stock: 5, InStock: true, IsDefault: true},
			{ID: "V2", ProductID: "P2", Label: "M1 / 256GB", Price: 700, Stock: 1, InStock: true, IsDefault: true},
		}, nil)

	// The first variant reserves fine; the second passed the advisory gate
	// but loses the conditional decrement to a concurrent checkout.
	f.catalog.On("ConditionalDecrementStock", mock.Anything, "V1", 1).
		Return(&model.Variant{ID: "V1", Stock: 4, InStock: true}, nil).Once()
	f.catalog.On("ConditionalDecrementStock", mock.Anything, "V2", 1).
		Return(nil, nil).Once()
	f.catalog.On("IncrementStock", mock.Anything, "V1", 1).
		Return(&model.Variant{ID: "V1", Stock: 5, InStock: true}, nil).Once()

	req := validRequest(model.PaymentMethodCOD)
	req.Items = []model.CartLine{
		{ProductID: "P1", Quantity: 1},
		{ProductID: "P2", Quantity: 1},
	}

	_, err := f.service.PlaceOrder(context.Background(), req)

	assert.Equal(t, model.ErrInsufficientStock, err)
	f.catalog.AssertExpectations(t)
	f.orders.AssertNotCalled(t, "CreateOrder")
}

func TestPlaceOrder_SameVariantLinesReservedOnce(t *testing.T) {
	f := newCheckoutFixture(t)
	f.stubSettings()
	f.stubCatalog(5)

	// Two cart lines resolving to the same variant produce one decrement for
	// the combined quantity, so the pair cannot sneak past a stock level that
	// covers each line individually but not both.
	f.catalog.On("ConditionalDecrementStock", mock.Anything, "V1", 3).
		Return(&model.Variant{ID: "V1", Stock: 2, InStock: true}, nil).Once()
	f.orders.On("CreateOrder", mock.Anything, mock.Anything, mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 2
	})).Return(nil).Once()
	f.orders.On("CreateTransaction", mock.Anything, mock.Anything).Return(nil).Once()

	req := validRequest(model.PaymentMethodCOD)
	req.Items = []model.CartLine{
		{ProductID: "P1", Quantity: 1, VariantLabel: strPtr("8GB / 256GB")},
		{ProductID: "P1", Quantity: 2},
	}

	_, err := f.service.PlaceOrder(context.Background(), req)

	require.NoError(t, err)
	f.catalog.AssertExpectations(t)
	f.orders.AssertExpectations(t)

	awaitConfirmation(t, f)
}

func TestPlaceOrder_GatewayFailureRollsBackEverything(t *testing.T) {
	f := newCheckoutFixture(t)
	f.stubSettings()
	f.stubCatalog(5)

	f.catalog.On("ConditionalDecrementStock", mock.Anything, "V1", 2).
		Return(&model.Variant{ID: "V1", Stock: 3, InStock: true}, nil).Once()
	f.orders.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	f.orders.On("CreateTransaction", mock.Anything, mock.Anything).Return(nil).Once()
	f.gateway.On("CreateIntent", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("gateway timeout")).Once()
	f.orders.On("DeleteTransaction", mock.Anything, mock.Anything).Return(nil).Once()
	f.orders.On("DeleteOrder", mock.Anything, mock.Anything).Return(nil).Once()
	f.catalog.On("IncrementStock", mock.Anything, "V1", 2).
		Return(&model.Variant{ID: "V1", Stock: 5, InStock: true}, nil).Once()

	_, err := f.service.PlaceOrder(context.Background(), validRequest(model.PaymentMethodOnline))

	assert.Equal(t, model.ErrGatewayError, err)
	f.orders.AssertExpectations(t)
	f.catalog.AssertExpectations(t)
}

func TestPlaceOrder_OrderPersistFailureReleasesStock(t *testing.T) {
	f := newCheckoutFixture(t)
	f.stubSettings()
	f.stubCatalog(5)

	f.catalog.On("ConditionalDecrementStock", mock.Anything, "V1", 2).
		Return(&model.Variant{ID: "V1", Stock: 3, InStock: true}, nil).Once()
	f.orders.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("connection refused")).Once()
	f.catalog.On("IncrementStock", mock.Anything, "V1", 2).
		Return(&model.Variant{ID: "V1", Stock: 5, InStock: true}, nil).Once()

	_, err := f.service.PlaceOrder(context.Background(), validRequest(model.PaymentMethodCOD))

	assert.Equal(t, model.ErrPersistenceFailure, err)
	f.catalog.AssertExpectations(t)
	f.orders.AssertNotCalled(t, "CreateTransaction")
}

func TestPlaceOrder_TransactionPersistFailureDeletesOrder(t *testing.T) {
	f := newCheckoutFixture(t)
	f.stubSettings()
	f.stubCatalog(5)

	f.catalog.On("ConditionalDecrementStock", mock.Anything, "V1", 2).
		Return(&model.Variant{ID: "V1", Stock: 3, InStock: true}, nil).Once()
	f.orders.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	f.orders.On("CreateTransaction", mock.Anything, mock.Anything).
		Return(errors.New("connection refused")).Once()
	f.orders.On("DeleteOrder", mock.Anything, mock.Anything).Return(nil).Once()
	f.catalog.On("IncrementStock", mock.Anything, "V1", 2).
		Return(&model.Variant{ID: "V1", Stock: 5, InStock: true}, nil).Once()

	_, err := f.service.PlaceOrder(context.Background(), validRequest(model.PaymentMethodCOD))

	assert.Equal(t, model.ErrPersistenceFailure, err)
	f.orders.AssertExpectations(t)
	// There is no transaction row to delete on this path.
	f.orders.AssertNotCalled(t, "DeleteTransaction")
}

func TestPlaceOrder_SettingsFailure(t *testing.T) {
	f := newCheckoutFixture(t)
	f.stubCatalog(5)

	f.settings.On("GetTaxConfig", mock.Anything).
		Return(model.TaxConfig{}, errors.New("connection refused"))

	_, err := f.service.PlaceOrder(context.Background(), validRequest(model.PaymentMethodCOD))

	assert.Equal(t, model.ErrPersistenceFailure, err)
	f.catalog.AssertNotCalled(t, "ConditionalDecrementStock")
}

func TestPlaceOrder_NotificationFailureDoesNotFailCheckout(t *testing.T) {
	f := newCheckoutFixture(t)
	f.sender.err = errors.New("webhook down")
	f.stubSettings()
	f.stubCatalog(5)

	f.catalog.On("ConditionalDecrementStock", mock.Anything, "V1", 2).
		Return(&model.Variant{ID: "V1", Stock: 3, InStock: true}, nil).Once()
	f.orders.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	f.orders.On("CreateTransaction", mock.Anything, mock.Anything).Return(nil).Once()

	resp, err := f.service.PlaceOrder(context.Background(), validRequest(model.PaymentMethodCOD))

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, resp.OrderID)

	awaitConfirmation(t, f)
}

func TestGetOrderByID(t *testing.T) {
	orderID := uuid.New()

	t.Run("found", func(t *testing.T) {
		f := newCheckoutFixture(t)
		order := &model.Order{ID: orderID, Total: 1180, Status: model.OrderStatusPlaced}
		items := []model.OrderItem{{OrderID: orderID, ProductID: "P1", Quantity: 2}}
		f.orders.On("FindOrderByID", mock.Anything, orderID).Return(order, items, nil)

		resp, err := f.service.GetOrderByID(context.Background(), orderID)

		require.NoError(t, err)
		assert.Equal(t, orderID, resp.Order.ID)
		assert.Len(t, resp.Items, 1)
	})

	t.Run("not found", func(t *testing.T) {
		f := newCheckoutFixture(t)
		f.orders.On("FindOrderByID", mock.Anything, orderID).Return(nil, nil, nil)

		_, err := f.service.GetOrderByID(context.Background(), orderID)

		assert.Equal(t, model.ErrOrderNotFound, err)
	})

	t.Run("storage error", func(t *testing.T) {
		f := newCheckoutFixture(t)
		f.orders.On("FindOrderByID", mock.Anything, orderID).
			Return(nil, nil, errors.New("connection refused"))

		_, err := f.service.GetOrderByID(context.Background(), orderID)

		assert.Equal(t, model.ErrPersistenceFailure, err)
	})
}
