package register

import (
	"context"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/partner"
	domainregister "github.com/pos/backend/internal/domain/register"
	"github.com/shopspring/decimal"
)

// ProductSummary is the register's view of a cached product
type ProductSummary struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Barcode  string          `json:"barcode,omitempty"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
}

// CustomerSummary is the register's view of a cached customer
type CustomerSummary struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Phone  string    `json:"phone,omitempty"`
	Points int       `json:"points"`
}

// RegisterStatus reports cache sync state for the cashier screen
type RegisterStatus struct {
	Loading   bool   `json:"loading"`
	LastError string `json:"last_error,omitempty"`
}

// LoadProducts refreshes the catalog cache
func (s *RegisterService) LoadProducts(ctx context.Context) error {
	return s.store.LoadProducts(ctx)
}

// LoadCustomers refreshes the customer cache
func (s *RegisterService) LoadCustomers(ctx context.Context) error {
	return s.store.LoadCustomers(ctx)
}

// FilterProducts filters the cached catalog by search term and category
func (s *RegisterService) FilterProducts(searchTerm, category string) []ProductSummary {
	if category == "" {
		category = domainregister.CategoryAll
	}
	return toProductSummaries(s.store.FilterProducts(searchTerm, category))
}

// ListCachedProducts returns the full cached catalog
func (s *RegisterService) ListCachedProducts() []ProductSummary {
	return toProductSummaries(s.store.Products())
}

// ListCachedCustomers returns the cached customer list
func (s *RegisterService) ListCachedCustomers() []CustomerSummary {
	return toCustomerSummaries(s.store.Customers())
}

// SearchProductByBarcode resolves a barcode scan
func (s *RegisterService) SearchProductByBarcode(ctx context.Context, barcode string) (ProductSummary, error) {
	product, err := s.store.SearchProductByBarcode(ctx, barcode)
	if err != nil {
		return ProductSummary{}, err
	}
	return toProductSummary(*product), nil
}

// SearchCustomers queries the customer source directly
func (s *RegisterService) SearchCustomers(ctx context.Context, query string) ([]CustomerSummary, error) {
	customers, err := s.store.SearchCustomers(ctx, query)
	if err != nil {
		return nil, err
	}
	return toCustomerSummaries(customers), nil
}

// Status reports whether a cache refresh is running and the last
// refresh failure, if any
func (s *RegisterService) Status() RegisterStatus {
	status := RegisterStatus{Loading: s.store.IsLoading()}
	if err := s.store.LastError(); err != nil {
		status.LastError = err.Error()
	}
	return status
}

func toProductSummary(p catalog.Product) ProductSummary {
	return ProductSummary{
		ID:       p.ID,
		Name:     p.Name,
		Barcode:  p.Barcode,
		Category: p.Category,
		Price:    p.Price,
		Stock:    p.Stock,
	}
}

func toProductSummaries(products []catalog.Product) []ProductSummary {
	result := make([]ProductSummary, 0, len(products))
	for _, p := range products {
		result = append(result, toProductSummary(p))
	}
	return result
}

func toCustomerSummaries(customers []partner.Customer) []CustomerSummary {
	result := make([]CustomerSummary, 0, len(customers))
	for _, c := range customers {
		result = append(result, CustomerSummary{
			ID:     c.ID,
			Name:   c.Name,
			Phone:  c.Phone,
			Points: c.Points,
		})
	}
	return result
}
