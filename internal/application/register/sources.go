package register

import (
	"context"

	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/partner"
	"github.com/pos/backend/internal/domain/shared"
)

// RepositoryCatalogSource feeds the register cache from the product
// repository. Only active products reach the cashier screen.
type RepositoryCatalogSource struct {
	repo catalog.ProductRepository
}

// NewRepositoryCatalogSource creates a catalog source backed by the product repository
func NewRepositoryCatalogSource(repo catalog.ProductRepository) *RepositoryCatalogSource {
	return &RepositoryCatalogSource{repo: repo}
}

// GetProducts returns all active products
func (s *RepositoryCatalogSource) GetProducts(ctx context.Context) ([]catalog.Product, error) {
	return s.repo.FindActive(ctx)
}

// GetProductByBarcode resolves a product by exact barcode
func (s *RepositoryCatalogSource) GetProductByBarcode(ctx context.Context, barcode string) (*catalog.Product, error) {
	return s.repo.FindByBarcode(ctx, barcode)
}

// RepositoryCustomerSource feeds the register cache from the customer
// repository
type RepositoryCustomerSource struct {
	repo partner.CustomerRepository
}

// NewRepositoryCustomerSource creates a customer source backed by the customer repository
func NewRepositoryCustomerSource(repo partner.CustomerRepository) *RepositoryCustomerSource {
	return &RepositoryCustomerSource{repo: repo}
}

// GetCustomers returns all customers for the register cache.
// PageSize zero disables pagination in the repository.
func (s *RepositoryCustomerSource) GetCustomers(ctx context.Context) ([]partner.Customer, error) {
	return s.repo.FindAll(ctx, shared.Filter{OrderBy: "name", OrderDir: "asc"})
}

// SearchCustomers returns customers whose name matches the query
func (s *RepositoryCustomerSource) SearchCustomers(ctx context.Context, query string) ([]partner.Customer, error) {
	return s.repo.SearchByName(ctx, query)
}
