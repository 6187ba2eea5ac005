package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CreateProductRequest creates a new product
type CreateProductRequest struct {
	Name     string          `json:"name" binding:"required,max=200"`
	Barcode  string          `json:"barcode" binding:"max=50"`
	Category string          `json:"category" binding:"required,max=100"`
	Price    decimal.Decimal `json:"price" binding:"required"`
	Stock    int             `json:"stock" binding:"min=0"`
}

// UpdateProductRequest updates an existing product
type UpdateProductRequest struct {
	Name     string          `json:"name" binding:"required,max=200"`
	Barcode  string          `json:"barcode" binding:"max=50"`
	Category string          `json:"category" binding:"required,max=100"`
	Price    decimal.Decimal `json:"price" binding:"required"`
	Stock    int             `json:"stock" binding:"min=0"`
}

// ProductResponse is the API view of a product
type ProductResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Barcode   string          `json:"barcode,omitempty"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ToProductResponse converts a product to its API view
func ToProductResponse(product *catalog.Product) *ProductResponse {
	return &ProductResponse{
		ID:        product.ID,
		Name:      product.Name,
		Barcode:   product.Barcode,
		Category:  product.Category,
		Price:     product.Price,
		Stock:     product.Stock,
		Status:    string(product.Status),
		CreatedAt: product.CreatedAt,
		UpdatedAt: product.UpdatedAt,
	}
}
