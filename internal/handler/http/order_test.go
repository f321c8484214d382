package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/commercekit/fulfillment/internal/domain"
	"github.com/commercekit/fulfillment/internal/event"
	"github.com/commercekit/fulfillment/internal/ordernum"
	"github.com/commercekit/fulfillment/internal/repository"
	"github.com/commercekit/fulfillment/internal/service"
	apperrors "github.com/commercekit/fulfillment/pkg/errors"
	"github.com/commercekit/fulfillment/pkg/health"
	"github.com/commercekit/fulfillment/pkg/middleware"
)

// --- Mock repositories ---

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

// --- Test helpers ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRouter(store *mockStore) http.Handler {
	log := testLogger()
	svc := service.NewOrder(store, ordernum.NewGenerator(nil, log), event.Noop{}, log)

	return NewRouter(RouterConfig{
		Logger:      log,
		ServiceName: "fulfillment",
		Health:      health.NewHandler("fulfillment"),
		Orders:      NewOrderHandler(svc, log),
		Stock:       NewStockHandler(svc, log),
		Bonus:       NewBonusHandler(svc, log),
		CORS:        middleware.DefaultCORSConfig(),
	})
}

func doRequest(t *testing.T, router http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestCreateOrder_RequiresOrganization(t *testing.T) {
	router := testRouter(newMockStore())

	rec := doRequest(t, router, http.MethodPost, "/api/v1/orders", map[string]any{}, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateOrder_ValidationError(t *testing.T) {
	router := testRouter(newMockStore())
	orgID := uuid.New()

	rec := doRequest(t, router, http.MethodPost, "/api/v1/orders", map[string]any{
		"currency": "USD",
		"items":    []any{},
	}, map[string]string{"X-Organization-ID": orgID.String()})

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestCreateOrder_Created(t *testing.T) {
	store := newMockStore()
	router := testRouter(store)

	orgID := uuid.New()
	locationID := uuid.New()
	productID := uuid.New()
	variantID := uuid.New()
	userID := uuid.New()

	store.catalog.On("GetVariant", mock.Anything, orgID, variantID).
		Return(&domain.Variant{ID: variantID, ProductID: productID, SKU: "SHIRT-M", Name: "Shirt M", Price: 5000}, nil)
	store.catalog.On("GetProduct", mock.Anything, orgID, productID).
		Return(&domain.Product{ID: productID, AllowBackorders: false}, nil)
	store.stock.On("GetForUpdate", mock.Anything, orgID, variantID, locationID).
		Return(&domain.StockRecord{Quantity: 10, ReservedQuantity: 0}, nil)
	store.orders.On("Insert", mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
		return o.Status == domain.OrderStatusPending && o.CustomerEmail == "ada@example.com"
	})).Return(nil)
	store.stock.On("AddReserved", mock.Anything, orgID, variantID, locationID, 2).Return(nil)
	store.stock.On("RecordMovement", mock.Anything, mock.Anything).Return(nil)
	store.settings.On("GetBonusPercentage", mock.Anything, orgID).Return(int64(5), nil)
	store.bonus.On("AddPending", mock.Anything, orgID, userID, int64(500)).Return(nil)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/orders", map[string]any{
		"currency":    "USD",
		"location_id": locationID,
		"items": []map[string]any{
			{"product_variant_id": variantID, "quantity": 2},
		},
	}, map[string]string{
		"X-Organization-ID":     orgID.String(),
		"X-User-ID":             userID.String(),
		"X-User-Email":          "ada@example.com",
		"X-User-Email-Verified": "true",
		"X-User-First-Name":     "Ada",
		"X-User-Last-Name":      "Lovelace",
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data domain.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.OrderStatusPending, resp.Data.Status)
	assert.Equal(t, int64(10000), resp.Data.Subtotal)
	assert.NotEmpty(t, resp.Data.OrderNumber)
	store.bonus.AssertExpectations(t)
}

func TestCreateOrder_InsufficientStockDetail(t *testing.T) {
	store := newMockStore()
	router := testRouter(store)

	orgID := uuid.New()
	locationID := uuid.New()
	productID := uuid.New()
	variantID := uuid.New()

	store.catalog.On("GetVariant", mock.Anything, orgID, variantID).
		Return(&domain.Variant{ID: variantID, ProductID: productID, SKU: "SHIRT-M", Price: 5000}, nil)
	store.catalog.On("GetProduct", mock.Anything, orgID, productID).
		Return(&domain.Product{ID: productID, AllowBackorders: false}, nil)
	store.stock.On("GetForUpdate", mock.Anything, orgID, variantID, locationID).
		Return(&domain.StockRecord{Quantity: 10, ReservedQuantity: 7}, nil)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/orders", map[string]any{
		"currency":    "USD",
		"location_id": locationID,
		"items": []map[string]any{
			{"product_variant_id": variantID, "quantity": 5},
		},
	}, map[string]string{"X-Organization-ID": orgID.String()})

	require.Equal(t, http.StatusConflict, rec.Code)

	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				VariantID string `json:"variant_id"`
				SKU       string `json:"sku"`
				Available int    `json:"available"`
				Requested int    `json:"requested"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INSUFFICIENT_STOCK", resp.Error.Code)
	assert.Equal(t, "SHIRT-M", resp.Error.Details.SKU)
	assert.Equal(t, 3, resp.Error.Details.Available)
	assert.Equal(t, 5, resp.Error.Details.Requested)

	store.orders.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestCompleteOrder_OK(t *testing.T) {
	store := newMockStore()
	router := testRouter(store)

	orgID := uuid.New()
	orderID := uuid.New()
	variantID := uuid.New()
	locationID := uuid.New()

	completed := &domain.Order{
		ID: orderID, OrganizationID: orgID, Status: domain.OrderStatusCompleted,
		Items: []domain.OrderItem{{VariantID: variantID, LocationID: locationID, Quantity: 2}},
	}

	store.orders.On("TransitionStatus", mock.Anything, orgID, orderID, domain.OrderStatusPending, domain.OrderStatusCompleted).
		Return(true, nil)
	store.orders.On("GetByID", mock.Anything, orgID, orderID).Return(completed, nil)
	store.stock.On("GetForUpdate", mock.Anything, orgID, variantID, locationID).
		Return(&domain.StockRecord{Quantity: 10, ReservedQuantity: 2}, nil)
	store.stock.On("UpdateQuantities", mock.Anything, mock.Anything).Return(nil)
	store.stock.On("RecordMovement", mock.Anything, mock.Anything).Return(nil)

	rec := doRequest(t, router, http.MethodPatch, "/api/v1/orders/"+orderID.String()+"/complete", nil,
		map[string]string{"X-Organization-ID": orgID.String()})

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestCompleteOrder_NotFound(t *testing.T) {
	store := newMockStore()
	router := testRouter(store)

	orgID := uuid.New()
	orderID := uuid.New()

	store.orders.On("TransitionStatus", mock.Anything, orgID, orderID, domain.OrderStatusPending, domain.OrderStatusCompleted).
		Return(false, nil)
	store.orders.On("GetByID", mock.Anything, orgID, orderID).
		Return(nil, apperrors.NotFound("order", orderID.String()))

	rec := doRequest(t, router, http.MethodPatch, "/api/v1/orders/"+orderID.String()+"/complete", nil,
		map[string]string{"X-Organization-ID": orgID.String()})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelOrder_AlreadyTerminalIsConflict(t *testing.T) {
	store := newMockStore()
	router := testRouter(store)

	orgID := uuid.New()
	orderID := uuid.New()

	store.orders.On("TransitionStatus", mock.Anything, orgID, orderID, domain.OrderStatusPending, domain.OrderStatusCancelled).
		Return(false, nil)
	store.orders.On("GetByID", mock.Anything, orgID, orderID).
		Return(&domain.Order{ID: orderID, Status: domain.OrderStatusCompleted}, nil)

	rec := doRequest(t, router, http.MethodPatch, "/api/v1/orders/"+orderID.String()+"/cancel", nil,
		map[string]string{"X-Organization-ID": orgID.String()})

	assert.Equal(t, http.StatusConflict, rec.Code)
	store.stock.AssertNotCalled(t, "GetForUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetStock(t *testing.T) {
	store := newMockStore()
	router := testRouter(store)

	orgID := uuid.New()
	variantID := uuid.New()
	locationID := uuid.New()

	store.stock.On("Get", mock.Anything, orgID, variantID, locationID).
		Return(&domain.StockRecord{VariantID: variantID, Quantity: 10, ReservedQuantity: 7}, nil)

	rec := doRequest(t, router, http.MethodGet,
		"/api/v1/stock/"+variantID.String()+"/locations/"+locationID.String(), nil,
		map[string]string{"X-Organization-ID": orgID.String()})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data domain.StockRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 10, resp.Data.Quantity)
	assert.Equal(t, 7, resp.Data.ReservedQuantity)
}

func TestGetBonusLedger_NotFound(t *testing.T) {
	store := newMockStore()
	router := testRouter(store)

	orgID := uuid.New()
	userID := uuid.New()

	store.bonus.On("Get", mock.Anything, orgID, userID).
		Return(nil, apperrors.NotFound("bonus ledger", userID.String()))

	rec := doRequest(t, router, http.MethodGet, "/api/v1/bonus-ledger/"+userID.String(), nil,
		map[string]string{"X-Organization-ID": orgID.String()})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
