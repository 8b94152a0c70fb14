package service

import (
	"context"
	"sync"

	"tech-kart/internal/gateway"
	"tech-kart/internal/model"
	"tech-kart/internal/notification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCatalogRepository is a mock implementation of repository.CatalogRepository.
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) FindProductsByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockCatalogRepository) FindVariantsByProductIDs(ctx context.Context, productIDs []string) ([]model.Variant, error) {
	args := m.Called(ctx, productIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Variant), args.Error(1)
}

func (m *MockCatalogRepository) ConditionalDecrementStock(ctx context.Context, variantID string, quantity int) (*model.Variant, error) {
	args := m.Called(ctx, variantID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Variant), args.Error(1)
}

func (m *MockCatalogRepository) IncrementStock(ctx context.Context, variantID string, quantity int) (*model.Variant, error) {
	args := m.Called(ctx, variantID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Variant), args.Error(1)
}

func (m *MockCatalogRepository) SetInStockFlag(ctx context.Context, variantID string, inStock bool) error {
	args := m.Called(ctx, variantID, inStock)
	return args.Error(0)
}

// MockOrderRepository is a mock implementation of repository.OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, order *model.Order, items []model.OrderItem) error {
	args := m.Called(ctx, order, items)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockOrderRepository) FindOrderByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	args := m.Called(ctx, id)
	var order *model.Order
	if args.Get(0) != nil {
		order = args.Get(0).(*model.Order)
	}
	var items []model.OrderItem
	if args.Get(1) != nil {
		items = args.Get(1).([]model.OrderItem)
	}
	return order, items, args.Error(2)
}

func (m *MockOrderRepository) UpdateOrderPayment(ctx context.Context, id uuid.UUID, patch model.OrderPaymentPatch) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateLatestTransactionForOrder(ctx context.Context, orderID uuid.UUID, patch model.TransactionPatch) error {
	args := m.Called(ctx, orderID, patch)
	return args.Error(0)
}

func (m *MockOrderRepository) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderRepository) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSettingsRepository is a mock implementation of repository.SettingsRepository.
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) GetTaxConfig(ctx context.Context) (model.TaxConfig, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.TaxConfig), args.Error(1)
}

func (m *MockSettingsRepository) GetShippingConfig(ctx context.Context) (model.ShippingConfig, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.ShippingConfig), args.Error(1)
}

// MockGatewayClient is a mock implementation of gateway.Client.
type MockGatewayClient struct {
	mock.Mock
}

func (m *MockGatewayClient) CreateIntent(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (*gateway.PaymentIntent, error) {
	args := m.Called(ctx, amount, currency, receipt, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.PaymentIntent), args.Error(1)
}

func (m *MockGatewayClient) PublicKey() string {
	args := m.Called()
	return args.String(0)
}

// recordingSender captures confirmations on a channel so tests can observe
// the asynchronous dispatch without races.
type recordingSender struct {
	ch  chan notification.OrderConfirmation
	err error
}

func newRecordingSender(err error) *recordingSender {
	return &recordingSender{
		ch:  make(chan notification.OrderConfirmation, 4),
		err: err,
	}
}

func (r *recordingSender) SendOrderConfirmation(ctx context.Context, msg notification.OrderConfirmation) error {
	r.ch <- msg
	return r.err
}

// fakeStockStore is an in-memory CatalogRepository with real
// compare-and-swap semantics, for exercising the ledger under contention.
type fakeStockStore struct {
	mu       sync.Mutex
	variants map[string]*model.Variant
}

func newFakeStockStore(variants ...model.Variant) *fakeStockStore {
	s := &fakeStockStore{variants: make(map[string]*model.Variant, len(variants))}
	for i := range variants {
		v := variants[i]
		s.variants[v.ID] = &v
	}
	return s
}

func (s *fakeStockStore) FindProductsByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	return nil, nil
}

func (s *fakeStockStore) FindVariantsByProductIDs(ctx context.Context, productIDs []string) ([]model.Variant, error) {
	return nil, nil
}

func (s *fakeStockStore) ConditionalDecrementStock(ctx context.Context, variantID string, quantity int) (*model.Variant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.variants[variantID]
	if !ok || v.Stock < quantity {
		return nil, nil
	}
	v.Stock -= quantity
	out := *v
	return &out, nil
}

func (s *fakeStockStore) IncrementStock(ctx context.Context, variantID string, quantity int) (*model.Variant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.variants[variantID]
	if !ok {
		return nil, nil
	}
	v.Stock += quantity
	out := *v
	return &out, nil
}

func (s *fakeStockStore) SetInStockFlag(ctx context.Context, variantID string, inStock bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.variants[variantID]; ok {
		v.InStock = inStock
	}
	return nil
}

func (s *fakeStockStore) stock(variantID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.variants[variantID].Stock
}
