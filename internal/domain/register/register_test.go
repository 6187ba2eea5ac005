package register

import (
	"context"
	"errors"
	"testing"

	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/partner"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalogSource struct {
	products []catalog.Product
	err      error
}

func (s *stubCatalogSource) GetProducts(ctx context.Context) ([]catalog.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.products, nil
}

func (s *stubCatalogSource) GetProductByBarcode(ctx context.Context, barcode string) (*catalog.Product, error) {
	for i := range s.products {
		if s.products[i].Barcode == barcode {
			return &s.products[i], nil
		}
	}
	return nil, shared.ErrProductNotFound
}

type stubCustomerSource struct {
	customers []partner.Customer
	err       error
}

func (s *stubCustomerSource) GetCustomers(ctx context.Context) ([]partner.Customer, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.customers, nil
}

func (s *stubCustomerSource) SearchCustomers(ctx context.Context, query string) ([]partner.Customer, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.customers, nil
}

func newTestRegister(t *testing.T, products ...catalog.Product) *Register {
	t.Helper()
	r := NewRegister(&stubCatalogSource{products: products}, &stubCustomerSource{})
	require.NoError(t, r.LoadProducts(context.Background()))
	return r
}

func catalogProduct(t *testing.T, name, category, barcode string, price float64, stock int) catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(name, category, valueobject.NewMoneyMXNFromFloat(price), stock)
	require.NoError(t, err)
	if barcode != "" {
		require.NoError(t, product.SetBarcode(barcode))
	}
	return *product
}

func TestRegister_CreateTicket(t *testing.T) {
	r := newTestRegister(t)

	first, err := r.ActiveTicket()
	require.NoError(t, err)
	assert.Equal(t, TicketStatusActive, first.Status)
	assert.Empty(t, first.Items)

	second := r.CreateTicket()
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, second.ID, r.ActiveTicketID())
	assert.Len(t, r.Tickets(), 2)
}

func TestRegister_AddItem(t *testing.T) {
	p1 := catalogProduct(t, "Agua 1L", "Bebidas", "", 10.00, 5)

	t.Run("adds one unit and totals the line", func(t *testing.T) {
		r := newTestRegister(t, p1)

		ticket, err := r.AddItem(p1.ID)
		require.NoError(t, err)
		require.Len(t, ticket.Items, 1)
		assert.Equal(t, 1, ticket.Items[0].Quantity)
		assert.True(t, ticket.Total.Equal(decimal.NewFromFloat(10.00)))

		ticket, err = r.AddItem(p1.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, ticket.Items[0].Quantity)
		assert.True(t, ticket.Total.Equal(decimal.NewFromFloat(20.00)))
	})

	t.Run("unknown product leaves the ticket untouched", func(t *testing.T) {
		r := newTestRegister(t, p1)

		other := catalogProduct(t, "Jugo 500ml", "Bebidas", "", 15.00, 5)
		_, err := r.AddItem(other.ID)
		assert.ErrorIs(t, err, shared.ErrProductNotFound)

		ticket, err := r.ActiveTicket()
		require.NoError(t, err)
		assert.Empty(t, ticket.Items)
	})

	t.Run("zero stock product is rejected", func(t *testing.T) {
		p2 := catalogProduct(t, "Cerveza lata", "Bebidas", "", 25.00, 0)
		r := newTestRegister(t, p2)

		_, err := r.AddItem(p2.ID)
		assert.ErrorIs(t, err, shared.ErrOutOfStock)

		ticket, err := r.ActiveTicket()
		require.NoError(t, err)
		assert.Empty(t, ticket.Items)
		assert.True(t, ticket.Total.IsZero())
	})
}

func TestRegister_UpdateQuantity(t *testing.T) {
	p1 := catalogProduct(t, "Agua 1L", "Bebidas", "", 10.00, 5)

	t.Run("zero removes the line", func(t *testing.T) {
		r := newTestRegister(t, p1)
		_, err := r.AddItem(p1.ID)
		require.NoError(t, err)

		ticket, err := r.UpdateQuantity(p1.ID, 0)
		require.NoError(t, err)
		assert.Empty(t, ticket.Items)
		assert.True(t, ticket.Total.IsZero())
	})

	t.Run("sets quantity within stock", func(t *testing.T) {
		r := newTestRegister(t, p1)
		_, err := r.AddItem(p1.ID)
		require.NoError(t, err)

		ticket, err := r.UpdateQuantity(p1.ID, 4)
		require.NoError(t, err)
		assert.Equal(t, 4, ticket.Items[0].Quantity)
		assert.True(t, ticket.Total.Equal(decimal.NewFromFloat(40.00)))
	})

	t.Run("rejects quantity above cached stock", func(t *testing.T) {
		r := newTestRegister(t, p1)
		_, err := r.AddItem(p1.ID)
		require.NoError(t, err)

		_, err = r.UpdateQuantity(p1.ID, 6)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)

		ticket, err := r.ActiveTicket()
		require.NoError(t, err)
		assert.Equal(t, 1, ticket.Items[0].Quantity)
	})

	t.Run("zero removes the line after the product left the cache", func(t *testing.T) {
		source := &stubCatalogSource{products: []catalog.Product{p1}}
		r := NewRegister(source, &stubCustomerSource{})
		require.NoError(t, r.LoadProducts(context.Background()))
		_, err := r.AddItem(p1.ID)
		require.NoError(t, err)

		source.products = nil
		require.NoError(t, r.LoadProducts(context.Background()))

		ticket, err := r.UpdateQuantity(p1.ID, 0)
		require.NoError(t, err)
		assert.Empty(t, ticket.Items)
		assert.True(t, ticket.Total.IsZero())
	})

	t.Run("zero for an absent line is a no-op", func(t *testing.T) {
		r := newTestRegister(t, p1)

		ticket, err := r.UpdateQuantity(p1.ID, 0)
		require.NoError(t, err)
		assert.Empty(t, ticket.Items)
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		r := newTestRegister(t, p1)
		_, err := r.AddItem(p1.ID)
		require.NoError(t, err)

		_, err = r.UpdateQuantity(p1.ID, -1)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestRegister_RemoveItem(t *testing.T) {
	p1 := catalogProduct(t, "Agua 1L", "Bebidas", "", 10.00, 5)
	r := newTestRegister(t, p1)
	_, err := r.AddItem(p1.ID)
	require.NoError(t, err)

	ticket, err := r.RemoveItem(p1.ID)
	require.NoError(t, err)
	assert.Empty(t, ticket.Items)

	// second removal is a no-op
	ticket, err = r.RemoveItem(p1.ID)
	require.NoError(t, err)
	assert.Empty(t, ticket.Items)
	assert.True(t, ticket.Total.IsZero())
}

func TestRegister_DeleteTicket(t *testing.T) {
	t.Run("focus moves to first non-deleted ticket", func(t *testing.T) {
		r := newTestRegister(t)
		ticketA, err := r.ActiveTicket()
		require.NoError(t, err)
		ticketB := r.CreateTicket()
		r.CreateTicket()

		require.NoError(t, r.SwitchTicket(ticketB.ID))
		require.NoError(t, r.DeleteTicket(ticketB.ID))

		assert.Equal(t, ticketA.ID, r.ActiveTicketID())
		assert.Len(t, r.Tickets(), 2)

		deleted, err := r.GetTicket(ticketB.ID)
		require.NoError(t, err)
		assert.Equal(t, TicketStatusDeleted, deleted.Status)
	})

	t.Run("deleting the last ticket synthesizes a fresh one", func(t *testing.T) {
		r := newTestRegister(t)
		only, err := r.ActiveTicket()
		require.NoError(t, err)

		require.NoError(t, r.DeleteTicket(only.ID))

		focused, err := r.ActiveTicket()
		require.NoError(t, err)
		assert.NotEqual(t, only.ID, focused.ID)
		assert.Equal(t, TicketStatusActive, focused.Status)
	})

	t.Run("deleting an unfocused ticket keeps focus", func(t *testing.T) {
		r := newTestRegister(t)
		ticketB := r.CreateTicket()
		require.NoError(t, r.SwitchTicket(ticketB.ID))

		ticketC := r.CreateTicket()
		require.NoError(t, r.SwitchTicket(ticketB.ID))
		require.NoError(t, r.DeleteTicket(ticketC.ID))

		assert.Equal(t, ticketB.ID, r.ActiveTicketID())
	})
}

func TestRegister_RestoreTicket(t *testing.T) {
	p1 := catalogProduct(t, "Agua 1L", "Bebidas", "", 10.00, 5)
	r := newTestRegister(t, p1)
	ticketA, err := r.ActiveTicket()
	require.NoError(t, err)
	_, err = r.AddItem(p1.ID)
	require.NoError(t, err)

	ticketB := r.CreateTicket()
	require.NoError(t, r.DeleteTicket(ticketA.ID))
	require.NoError(t, r.RestoreTicket(ticketA.ID))

	restored, err := r.GetTicket(ticketA.ID)
	require.NoError(t, err)
	assert.Equal(t, TicketStatusActive, restored.Status)
	assert.Len(t, restored.Items, 1)
	assert.True(t, restored.Total.Equal(decimal.NewFromFloat(10.00)))

	// restore does not steal focus
	assert.Equal(t, ticketB.ID, r.ActiveTicketID())
}

func TestRegister_SwitchTicket(t *testing.T) {
	r := newTestRegister(t)
	ticketB := r.CreateTicket()
	require.NoError(t, r.DeleteTicket(ticketB.ID))

	err := r.SwitchTicket(ticketB.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRegister_Checkout(t *testing.T) {
	p1 := catalogProduct(t, "Agua 1L", "Bebidas", "", 20.50, 5)
	p2 := catalogProduct(t, "Jugo 500ml", "Bebidas", "", 25.00, 5)

	t.Run("empty cart is rejected", func(t *testing.T) {
		r := newTestRegister(t, p1)
		ticket, err := r.ActiveTicket()
		require.NoError(t, err)

		_, err = r.BeginCheckout(ticket.ID)
		assert.ErrorIs(t, err, shared.ErrEmptyCart)
	})

	t.Run("draft snapshots the cart without clearing it", func(t *testing.T) {
		r := newTestRegister(t, p1, p2)
		ticket, err := r.ActiveTicket()
		require.NoError(t, err)
		_, err = r.AddItem(p1.ID)
		require.NoError(t, err)
		_, err = r.AddItem(p2.ID)
		require.NoError(t, err)

		draft, err := r.BeginCheckout(ticket.ID)
		require.NoError(t, err)
		assert.Len(t, draft.Items, 2)

		current, err := r.ActiveTicket()
		require.NoError(t, err)
		assert.Len(t, current.Items, 2)
		assert.True(t, current.Total.Equal(decimal.NewFromFloat(45.50)))
	})

	t.Run("complete recycles the ticket slot under the same id", func(t *testing.T) {
		r := newTestRegister(t, p1, p2)
		ticket, err := r.ActiveTicket()
		require.NoError(t, err)
		_, err = r.AddItem(p1.ID)
		require.NoError(t, err)
		_, err = r.AddItem(p2.ID)
		require.NoError(t, err)

		require.NoError(t, r.CompleteTicket(ticket.ID))

		recycled, err := r.GetTicket(ticket.ID)
		require.NoError(t, err)
		assert.Equal(t, ticket.ID, recycled.ID)
		assert.Equal(t, TicketStatusActive, recycled.Status)
		assert.Empty(t, recycled.Items)
		assert.True(t, recycled.Total.IsZero())
	})
}

func TestRegister_FilterProducts(t *testing.T) {
	cola := catalogProduct(t, "Coca Cola 600ml", "Bebidas", "7501055300891", 18.50, 24)
	sabritas := catalogProduct(t, "Sabritas Original", "Botanas", "7501011101234", 17.00, 12)
	agua := catalogProduct(t, "Agua Ciel 1L", "Bebidas", "", 10.00, 30)
	r := newTestRegister(t, cola, sabritas, agua)

	t.Run("all-categories sentinel returns everything", func(t *testing.T) {
		assert.Len(t, r.FilterProducts("", CategoryAll), 3)
	})

	t.Run("category restricts the list", func(t *testing.T) {
		result := r.FilterProducts("", "Botanas")
		require.Len(t, result, 1)
		assert.Equal(t, "Sabritas Original", result[0].Name)
	})

	t.Run("name match is case-insensitive", func(t *testing.T) {
		result := r.FilterProducts("coca", CategoryAll)
		require.Len(t, result, 1)
		assert.Equal(t, "Coca Cola 600ml", result[0].Name)
	})

	t.Run("barcode substring matches", func(t *testing.T) {
		result := r.FilterProducts("055300", CategoryAll)
		require.Len(t, result, 1)
		assert.Equal(t, "Coca Cola 600ml", result[0].Name)
	})

	t.Run("term and category combine", func(t *testing.T) {
		result := r.FilterProducts("agua", "Bebidas")
		require.Len(t, result, 1)
		assert.Equal(t, "Agua Ciel 1L", result[0].Name)
	})

	t.Run("never mutates the cache", func(t *testing.T) {
		_ = r.FilterProducts("coca", "Bebidas")
		assert.Len(t, r.Products(), 3)
	})
}

func TestRegister_LoadProducts(t *testing.T) {
	cola := catalogProduct(t, "Coca Cola 600ml", "Bebidas", "", 18.50, 24)

	t.Run("failure keeps the stale cache and records the error", func(t *testing.T) {
		source := &stubCatalogSource{products: []catalog.Product{cola}}
		r := NewRegister(source, &stubCustomerSource{})
		require.NoError(t, r.LoadProducts(context.Background()))

		source.err = errors.New("connection refused")
		err := r.LoadProducts(context.Background())
		assert.ErrorIs(t, err, shared.ErrCacheLoadFailed)
		assert.Len(t, r.Products(), 1)
		assert.Error(t, r.LastError())

		source.err = nil
		require.NoError(t, r.LoadProducts(context.Background()))
		assert.NoError(t, r.LastError())
	})
}

func TestRegister_LoadCustomers(t *testing.T) {
	customer, err := partner.NewCustomer("María López", "", "")
	require.NoError(t, err)
	source := &stubCustomerSource{customers: []partner.Customer{*customer}}
	r := NewRegister(&stubCatalogSource{}, source)

	require.NoError(t, r.LoadCustomers(context.Background()))
	assert.Len(t, r.Customers(), 1)

	source.err = errors.New("timeout")
	loadErr := r.LoadCustomers(context.Background())
	assert.ErrorIs(t, loadErr, shared.ErrCacheLoadFailed)
	assert.Len(t, r.Customers(), 1)
}

func TestRegister_SearchProductByBarcode(t *testing.T) {
	cola := catalogProduct(t, "Coca Cola 600ml", "Bebidas", "7501055300891", 18.50, 24)
	agua := catalogProduct(t, "Agua Ciel 1L", "Bebidas", "7501086801234", 10.00, 30)

	t.Run("resolves from the cache first", func(t *testing.T) {
		r := newTestRegister(t, cola)
		product, err := r.SearchProductByBarcode(context.Background(), "7501055300891")
		require.NoError(t, err)
		assert.Equal(t, cola.ID, product.ID)
	})

	t.Run("falls back to the catalog source", func(t *testing.T) {
		source := &stubCatalogSource{products: []catalog.Product{cola, agua}}
		r := NewRegister(source, &stubCustomerSource{})

		product, err := r.SearchProductByBarcode(context.Background(), "7501086801234")
		require.NoError(t, err)
		assert.Equal(t, agua.ID, product.ID)
	})

	t.Run("unknown barcode is a not-found", func(t *testing.T) {
		r := newTestRegister(t, cola)
		_, err := r.SearchProductByBarcode(context.Background(), "0000000000000")
		assert.ErrorIs(t, err, shared.ErrProductNotFound)
	})
}

func TestRegister_SetCustomerAndObservations(t *testing.T) {
	customer, err := partner.NewCustomer("María López", "", "")
	require.NoError(t, err)
	r := newTestRegister(t)
	ticket, err := r.ActiveTicket()
	require.NoError(t, err)

	require.NoError(t, r.SetCustomer(ticket.ID, &customer.ID, customer.Name))
	require.NoError(t, r.SetObservations(ticket.ID, "entregar después de las 5"))

	updated, err := r.GetTicket(ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "María López", updated.CustomerName)
	require.NotNil(t, updated.CustomerID)
	assert.Equal(t, customer.ID, *updated.CustomerID)
	assert.Equal(t, "entregar después de las 5", updated.Observations)
}
