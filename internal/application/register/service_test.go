package register

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/partner"
	domainregister "github.com/pos/backend/internal/domain/register"
	"github.com/pos/backend/internal/domain/sales"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockSaleRepository is a mock implementation of sales.SaleRepository
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindBySaleNumber(ctx context.Context, number string) (*sales.Sale, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sales.Sale, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]sales.Sale, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) Save(ctx context.Context, sale *sales.Sale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

func (m *MockSaleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events[0])
	return args.Error(0)
}

type memoryIdempotencyStore struct {
	mu      sync.Mutex
	records map[string][]byte
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{records: make(map[string][]byte)}
}

func (s *memoryIdempotencyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.records[key]
	return data, ok, nil
}

func (s *memoryIdempotencyStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = value
	return nil
}

type fixedCatalogSource struct {
	products []catalog.Product
}

func (s *fixedCatalogSource) GetProducts(ctx context.Context) ([]catalog.Product, error) {
	return s.products, nil
}

func (s *fixedCatalogSource) GetProductByBarcode(ctx context.Context, barcode string) (*catalog.Product, error) {
	return nil, shared.ErrProductNotFound
}

type fixedCustomerSource struct{}

func (s *fixedCustomerSource) GetCustomers(ctx context.Context) ([]partner.Customer, error) {
	return nil, nil
}

func (s *fixedCustomerSource) SearchCustomers(ctx context.Context, query string) ([]partner.Customer, error) {
	return nil, nil
}

func testProduct(t *testing.T, name string, price float64, stock int) catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(name, "Bebidas", valueobject.NewMoneyMXNFromFloat(price), stock)
	require.NoError(t, err)
	return *product
}

func setupService(t *testing.T, products ...catalog.Product) (*RegisterService, *MockSaleRepository, *MockEventPublisher) {
	t.Helper()
	store := domainregister.NewRegister(&fixedCatalogSource{products: products}, &fixedCustomerSource{})
	require.NoError(t, store.LoadProducts(context.Background()))

	saleRepo := new(MockSaleRepository)
	publisher := new(MockEventPublisher)
	service := NewRegisterService(store, saleRepo, publisher, newMemoryIdempotencyStore(), zap.NewNop())
	return service, saleRepo, publisher
}

func TestRegisterService_Checkout(t *testing.T) {
	p1 := testProduct(t, "Coca Cola 600ml", 18.50, 24)

	t.Run("persists the sale and recycles the ticket", func(t *testing.T) {
		service, saleRepo, publisher := setupService(t, p1)
		ticket, err := service.GetActiveTicket()
		require.NoError(t, err)
		_, err = service.AddItem(AddItemRequest{ProductID: p1.ID})
		require.NoError(t, err)
		_, err = service.UpdateQuantity(UpdateQuantityRequest{ProductID: p1.ID, Quantity: 2})
		require.NoError(t, err)

		saleRepo.On("Save", mock.Anything, mock.AnythingOfType("*sales.Sale")).Return(nil)
		publisher.On("Publish", mock.Anything, mock.AnythingOfType("*sales.SaleCompletedEvent")).Return(nil)

		response, err := service.Checkout(context.Background(), ticket.ID, CheckoutRequest{PaymentMethod: "efectivo"}, "")
		require.NoError(t, err)

		assert.True(t, response.Total.Equal(decimal.NewFromFloat(37.00)))
		assert.Equal(t, "efectivo", response.PaymentMethod)
		assert.Equal(t, 2, response.ItemCount)

		recycled, err := service.GetTicket(ticket.ID)
		require.NoError(t, err)
		assert.Empty(t, recycled.Items)
		assert.Equal(t, string(domainregister.TicketStatusActive), recycled.Status)

		saleRepo.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("empty cart never reaches the repository", func(t *testing.T) {
		service, saleRepo, _ := setupService(t, p1)
		ticket, err := service.GetActiveTicket()
		require.NoError(t, err)

		_, err = service.Checkout(context.Background(), ticket.ID, CheckoutRequest{PaymentMethod: "efectivo"}, "")
		assert.ErrorIs(t, err, shared.ErrEmptyCart)
		saleRepo.AssertNotCalled(t, "Save")
	})

	t.Run("persistence failure leaves the cart intact", func(t *testing.T) {
		service, saleRepo, _ := setupService(t, p1)
		ticket, err := service.GetActiveTicket()
		require.NoError(t, err)
		_, err = service.AddItem(AddItemRequest{ProductID: p1.ID})
		require.NoError(t, err)

		saleRepo.On("Save", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

		_, err = service.Checkout(context.Background(), ticket.ID, CheckoutRequest{PaymentMethod: "tarjeta"}, "")
		require.Error(t, err)

		current, err := service.GetTicket(ticket.ID)
		require.NoError(t, err)
		assert.Len(t, current.Items, 1)
		assert.True(t, current.Total.Equal(decimal.NewFromFloat(18.50)))
	})

	t.Run("unknown payment method is rejected before persistence", func(t *testing.T) {
		service, saleRepo, _ := setupService(t, p1)
		ticket, err := service.GetActiveTicket()
		require.NoError(t, err)
		_, err = service.AddItem(AddItemRequest{ProductID: p1.ID})
		require.NoError(t, err)

		_, err = service.Checkout(context.Background(), ticket.ID, CheckoutRequest{PaymentMethod: "cheque"}, "")
		require.Error(t, err)
		saleRepo.AssertNotCalled(t, "Save")
	})

	t.Run("idempotency key replays the original confirmation", func(t *testing.T) {
		service, saleRepo, publisher := setupService(t, p1)
		ticket, err := service.GetActiveTicket()
		require.NoError(t, err)
		_, err = service.AddItem(AddItemRequest{ProductID: p1.ID})
		require.NoError(t, err)

		saleRepo.On("Save", mock.Anything, mock.Anything).Return(nil).Once()
		publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		first, err := service.Checkout(context.Background(), ticket.ID, CheckoutRequest{PaymentMethod: "efectivo"}, "key-123")
		require.NoError(t, err)

		second, err := service.Checkout(context.Background(), ticket.ID, CheckoutRequest{PaymentMethod: "efectivo"}, "key-123")
		require.NoError(t, err)

		assert.Equal(t, first.SaleNumber, second.SaleNumber)
		assert.Equal(t, first.SaleID, second.SaleID)
		saleRepo.AssertNumberOfCalls(t, "Save", 1)
	})
}

func TestRegisterService_TicketCommands(t *testing.T) {
	p1 := testProduct(t, "Coca Cola 600ml", 18.50, 24)
	service, _, _ := setupService(t, p1)

	created := service.CreateTicket()
	list := service.ListTickets()
	assert.Len(t, list.Tickets, 2)
	assert.Equal(t, created.ID, list.ActiveTicketID)

	require.NoError(t, service.DeleteTicket(created.ID))
	list = service.ListTickets()
	assert.Len(t, list.Tickets, 1)
	assert.NotEqual(t, created.ID, list.ActiveTicketID)

	require.NoError(t, service.RestoreTicket(created.ID))
	assert.Len(t, service.ListTickets().Tickets, 2)
}

func TestRegisterService_FilterProducts(t *testing.T) {
	p1 := testProduct(t, "Coca Cola 600ml", 18.50, 24)
	p2 := testProduct(t, "Agua Ciel 1L", 10.00, 30)
	service, _, _ := setupService(t, p1, p2)

	t.Run("empty category defaults to the all sentinel", func(t *testing.T) {
		assert.Len(t, service.FilterProducts("", ""), 2)
	})

	t.Run("term narrows the result", func(t *testing.T) {
		result := service.FilterProducts("ciel", "")
		require.Len(t, result, 1)
		assert.Equal(t, "Agua Ciel 1L", result[0].Name)
	})
}

func TestRegisterService_Status(t *testing.T) {
	p1 := testProduct(t, "Coca Cola 600ml", 18.50, 24)
	service, _, _ := setupService(t, p1)

	status := service.Status()
	assert.False(t, status.Loading)
	assert.Empty(t, status.LastError)
}
