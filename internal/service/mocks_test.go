package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/commercekit/fulfillment/internal/domain"
	"github.com/commercekit/fulfillment/internal/repository"
)

type mockOrderRepo struct{ mock.Mock }

func (m *mockOrderRepo) Insert(ctx context.Context, order *domain.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *mockOrderRepo) GetByID(ctx context.Context, organizationID, orderID uuid.UUID) (*domain.Order, error) {
	args := m.Called(ctx, organizationID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepo) TransitionStatus(ctx context.Context, organizationID, orderID uuid.UUID, from, to domain.OrderStatus) (bool, error) {
	args := m.Called(ctx, organizationID, orderID, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *mockOrderRepo) List(ctx context.Context, organizationID uuid.UUID, filter repository.OrderFilter) ([]domain.Order, int, error) {
	args := m.Called(ctx, organizationID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Order), args.Int(1), args.Error(2)
}

type mockStockRepo struct{ mock.Mock }

func (m *mockStockRepo) Get(ctx context.Context, organizationID, variantID, locationID uuid.UUID) (*domain.StockRecord, error) {
	args := m.Called(ctx, organizationID, variantID, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockRecord), args.Error(1)
}

func (m *mockStockRepo) GetForUpdate(ctx context.Context, organizationID, variantID, locationID uuid.UUID) (*domain.StockRecord, error) {
	args := m.Called(ctx, organizationID, variantID, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockRecord), args.Error(1)
}

func (m *mockStockRepo) AddReserved(ctx context.Context, organizationID, variantID, locationID uuid.UUID, qty int) error {
	return m.Called(ctx, organizationID, variantID, locationID, qty).Error(0)
}

func (m *mockStockRepo) UpdateQuantities(ctx context.Context, rec *domain.StockRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *mockStockRepo) Insert(ctx context.Context, rec *domain.StockRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *mockStockRepo) RecordMovement(ctx context.Context, mv *domain.StockMovement) error {
	return m.Called(ctx, mv).Error(0)
}

type mockBonusRepo struct{ mock.Mock }

func (m *mockBonusRepo) Get(ctx context.Context, organizationID, userID uuid.UUID) (*domain.BonusLedgerRecord, error) {
	args := m.Called(ctx, organizationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BonusLedgerRecord), args.Error(1)
}

func (m *mockBonusRepo) AddPending(ctx context.Context, organizationID, userID uuid.UUID, amount int64) error {
	return m.Called(ctx, organizationID, userID, amount).Error(0)
}

func (m *mockBonusRepo) Settle(ctx context.Context, organizationID, userID uuid.UUID, amount int64) (bool, error) {
	args := m.Called(ctx, organizationID, userID, amount)
	return args.Bool(0), args.Error(1)
}

func (m *mockBonusRepo) DeductPending(ctx context.Context, organizationID, userID uuid.UUID, amount int64) (bool, error) {
	args := m.Called(ctx, organizationID, userID, amount)
	return args.Bool(0), args.Error(1)
}

type mockCatalogRepo struct{ mock.Mock }

func (m *mockCatalogRepo) GetVariant(ctx context.Context, organizationID, variantID uuid.UUID) (*domain.Variant, error) {
	args := m.Called(ctx, organizationID, variantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Variant), args.Error(1)
}

func (m *mockCatalogRepo) GetProduct(ctx context.Context, organizationID, productID uuid.UUID) (*domain.Product, error) {
	args := m.Called(ctx, organizationID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

type mockSettingsRepo struct{ mock.Mock }

func (m *mockSettingsRepo) GetBonusPercentage(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	args := m.Called(ctx, organizationID)
	return args.Get(0).(int64), args.Error(1)
}

// mockStore binds the mock repositories and runs WithinTx callbacks directly,
// so the transactional composition is exercised without a database.
type mockStore struct {
	orders   *mockOrderRepo
	stock    *mockStockRepo
	bonus    *mockBonusRepo
	catalog  *mockCatalogRepo
	settings *mockSettingsRepo
}

func newMockStore() *mockStore {
	return &mockStore{
		orders:   &mockOrderRepo{},
		stock:    &mockStockRepo{},
		bonus:    &mockBonusRepo{},
		catalog:  &mockCatalogRepo{},
		settings: &mockSettingsRepo{},
	}
}

func (m *mockStore) Orders() repository.OrderRepository      { return m.orders }
func (m *mockStore) Stock() repository.StockRepository       { return m.stock }
func (m *mockStore) Bonus() repository.BonusLedgerRepository { return m.bonus }
func (m *mockStore) Catalog() repository.CatalogRepository   { return m.catalog }
func (m *mockStore) Settings() repository.SettingsRepository { return m.settings }

func (m *mockStore) WithinTx(ctx context.Context, fn func(ctx context.Context, r repository.Repositories) error) error {
	return fn(ctx, m)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *mockPublisher) PublishOrderCompleted(ctx context.Context, order *domain.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *mockPublisher) PublishOrderCancelled(ctx context.Context, order *domain.Order) error {
	return m.Called(ctx, order).Error(0)
}
