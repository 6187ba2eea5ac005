package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	registerapp "github.com/pos/backend/internal/application/register"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/partner"
	domainregister "github.com/pos/backend/internal/domain/register"
	"github.com/pos/backend/internal/domain/sales"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/domain/shared/valueobject"
	"github.com/pos/backend/internal/interfaces/http/dto"
	"github.com/pos/backend/internal/interfaces/http/middleware"
	"github.com/pos/backend/internal/interfaces/http/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSaleRepository struct {
	mu    sync.Mutex
	saved []*sales.Sale
	err   error
}

func (r *stubSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	return nil, shared.ErrNotFound
}

func (r *stubSaleRepository) FindBySaleNumber(ctx context.Context, number string) (*sales.Sale, error) {
	return nil, shared.ErrNotFound
}

func (r *stubSaleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sales.Sale, error) {
	return nil, nil
}

func (r *stubSaleRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]sales.Sale, error) {
	return nil, nil
}

func (r *stubSaleRepository) Save(ctx context.Context, sale *sales.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, sale)
	return nil
}

func (r *stubSaleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return 0, nil
}

func (r *stubSaleRepository) savedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saved)
}

type stubPublisher struct{}

func (p *stubPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return nil
}

type stubIdempotencyStore struct {
	mu      sync.Mutex
	records map[string][]byte
}

func (s *stubIdempotencyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.records[key]
	return data, ok, nil
}

func (s *stubIdempotencyStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = value
	return nil
}

type staticCatalogSource struct {
	products []catalog.Product
}

func (s *staticCatalogSource) GetProducts(ctx context.Context) ([]catalog.Product, error) {
	return s.products, nil
}

func (s *staticCatalogSource) GetProductByBarcode(ctx context.Context, barcode string) (*catalog.Product, error) {
	for i := range s.products {
		if s.products[i].Barcode == barcode {
			return &s.products[i], nil
		}
	}
	return nil, shared.ErrProductNotFound
}

type staticCustomerSource struct{}

func (s *staticCustomerSource) GetCustomers(ctx context.Context) ([]partner.Customer, error) {
	return nil, nil
}

func (s *staticCustomerSource) SearchCustomers(ctx context.Context, query string) ([]partner.Customer, error) {
	return nil, nil
}

type registerTestEnv struct {
	engine   *gin.Engine
	saleRepo *stubSaleRepository
	products []catalog.Product
}

func setupRegisterRouter(t *testing.T, products ...catalog.Product) *registerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	store := domainregister.NewRegister(&staticCatalogSource{products: products}, &staticCustomerSource{})
	require.NoError(t, store.LoadProducts(context.Background()))

	saleRepo := &stubSaleRepository{}
	service := registerapp.NewRegisterService(
		store,
		saleRepo,
		&stubPublisher{},
		&stubIdempotencyStore{records: make(map[string][]byte)},
		zap.NewNop(),
	)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	router.NewRouter(engine).Register(NewRegisterHandler(service)).Setup()

	return &registerTestEnv{engine: engine, saleRepo: saleRepo, products: products}
}

func (e *registerTestEnv) do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func dataField(t *testing.T, resp dto.Response, key string) any {
	t.Helper()
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok, "response data is not an object")
	return data[key]
}

func registerTestProduct(t *testing.T, name, barcode string, price float64, stock int) catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(name, "Bebidas", valueobject.NewMoneyMXNFromFloat(price), stock)
	require.NoError(t, err)
	require.NoError(t, product.SetBarcode(barcode))
	return *product
}

func activeTicketID(t *testing.T, env *registerTestEnv) string {
	t.Helper()
	w := env.do(http.MethodGet, "/api/v1/register/tickets/active", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	id, ok := dataField(t, resp, "id").(string)
	require.True(t, ok)
	return id
}

func TestRegisterHandler_TicketLifecycle(t *testing.T) {
	p1 := registerTestProduct(t, "Coca Cola 600ml", "7501055300846", 18.50, 24)
	env := setupRegisterRouter(t, p1)

	w := env.do(http.MethodGet, "/api/v1/register/tickets", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	tickets := dataField(t, resp, "tickets").([]any)
	assert.Len(t, tickets, 1)

	w = env.do(http.MethodPost, "/api/v1/register/tickets", nil, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeResponse(t, w)
	newID := dataField(t, created, "id").(string)
	assert.Equal(t, newID, activeTicketID(t, env))

	w = env.do(http.MethodGet, "/api/v1/register/tickets", nil, nil)
	resp = decodeResponse(t, w)
	assert.Len(t, dataField(t, resp, "tickets").([]any), 2)
	assert.Equal(t, newID, dataField(t, resp, "active_ticket_id").(string))

	w = env.do(http.MethodDelete, "/api/v1/register/tickets/"+newID, nil, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	assert.NotEqual(t, newID, activeTicketID(t, env))

	w = env.do(http.MethodPost, "/api/v1/register/tickets/"+newID+"/restore", nil, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(http.MethodPost, "/api/v1/register/tickets/not-a-uuid/switch", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterHandler_CartMutations(t *testing.T) {
	p1 := registerTestProduct(t, "Coca Cola 600ml", "7501055300846", 18.50, 24)
	env := setupRegisterRouter(t, p1)

	w := env.do(http.MethodPost, "/api/v1/register/items", map[string]any{"product_id": p1.ID}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	items := dataField(t, resp, "items").([]any)
	require.Len(t, items, 1)

	w = env.do(http.MethodPut, "/api/v1/register/items", map[string]any{"product_id": p1.ID, "quantity": 3}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeResponse(t, w)
	line := dataField(t, resp, "items").([]any)[0].(map[string]any)
	assert.Equal(t, float64(3), line["quantity"])

	w = env.do(http.MethodPut, "/api/v1/register/items", map[string]any{"product_id": p1.ID, "quantity": 100}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errResp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeInsufficientStock, errResp.Error.Code)

	w = env.do(http.MethodDelete, "/api/v1/register/items/"+p1.ID.String(), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeResponse(t, w)
	assert.Empty(t, dataField(t, resp, "items"))

	w = env.do(http.MethodPost, "/api/v1/register/items", map[string]any{"product_id": uuid.New()}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	errResp = decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeProductNotFound, errResp.Error.Code)
}

func TestRegisterHandler_Checkout(t *testing.T) {
	p1 := registerTestProduct(t, "Coca Cola 600ml", "7501055300846", 18.50, 24)

	t.Run("completes a sale", func(t *testing.T) {
		env := setupRegisterRouter(t, p1)
		ticketID := activeTicketID(t, env)

		w := env.do(http.MethodPost, "/api/v1/register/items", map[string]any{"product_id": p1.ID}, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do(http.MethodPost, fmt.Sprintf("/api/v1/register/tickets/%s/checkout", ticketID),
			map[string]any{"payment_method": "efectivo"}, nil)
		require.Equal(t, http.StatusCreated, w.Code)

		resp := decodeResponse(t, w)
		assert.Equal(t, "efectivo", dataField(t, resp, "payment_method"))
		assert.NotEmpty(t, dataField(t, resp, "sale_number"))
		assert.Equal(t, 1, env.saleRepo.savedCount())
	})

	t.Run("rejects an empty cart", func(t *testing.T) {
		env := setupRegisterRouter(t, p1)
		ticketID := activeTicketID(t, env)

		w := env.do(http.MethodPost, fmt.Sprintf("/api/v1/register/tickets/%s/checkout", ticketID),
			map[string]any{"payment_method": "efectivo"}, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeEmptyCart, resp.Error.Code)
		assert.Equal(t, 0, env.saleRepo.savedCount())
	})

	t.Run("rejects an unknown payment method at binding", func(t *testing.T) {
		env := setupRegisterRouter(t, p1)
		ticketID := activeTicketID(t, env)

		w := env.do(http.MethodPost, "/api/v1/register/items", map[string]any{"product_id": p1.ID}, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do(http.MethodPost, fmt.Sprintf("/api/v1/register/tickets/%s/checkout", ticketID),
			map[string]any{"payment_method": "cheque"}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("replays the confirmation for a repeated idempotency key", func(t *testing.T) {
		env := setupRegisterRouter(t, p1)
		ticketID := activeTicketID(t, env)
		headers := map[string]string{"Idempotency-Key": "req-abc-1"}

		w := env.do(http.MethodPost, "/api/v1/register/items", map[string]any{"product_id": p1.ID}, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do(http.MethodPost, fmt.Sprintf("/api/v1/register/tickets/%s/checkout", ticketID),
			map[string]any{"payment_method": "tarjeta"}, headers)
		require.Equal(t, http.StatusCreated, w.Code)
		first := decodeResponse(t, w)

		w = env.do(http.MethodPost, fmt.Sprintf("/api/v1/register/tickets/%s/checkout", ticketID),
			map[string]any{"payment_method": "tarjeta"}, headers)
		require.Equal(t, http.StatusCreated, w.Code)
		second := decodeResponse(t, w)

		assert.Equal(t, dataField(t, first, "sale_number"), dataField(t, second, "sale_number"))
		assert.Equal(t, 1, env.saleRepo.savedCount())
	})
}

func TestRegisterHandler_ProductLookups(t *testing.T) {
	p1 := registerTestProduct(t, "Coca Cola 600ml", "7501055300846", 18.50, 24)
	p2 := registerTestProduct(t, "Sabritas Original", "7500478001234", 17.00, 10)
	env := setupRegisterRouter(t, p1, p2)

	w := env.do(http.MethodGet, "/api/v1/register/products", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Len(t, resp.Data.([]any), 2)

	w = env.do(http.MethodGet, "/api/v1/register/products?search=coca", nil, nil)
	resp = decodeResponse(t, w)
	require.Len(t, resp.Data.([]any), 1)
	found := resp.Data.([]any)[0].(map[string]any)
	assert.Equal(t, "Coca Cola 600ml", found["name"])

	w = env.do(http.MethodGet, "/api/v1/register/products/barcode/7500478001234", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeResponse(t, w)
	assert.Equal(t, "Sabritas Original", dataField(t, resp, "name"))

	w = env.do(http.MethodGet, "/api/v1/register/products/barcode/0000000000000", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodGet, "/api/v1/register/customers/search", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
