package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/sales"
	"github.com/shopspring/decimal"
)

// SaleItemResponse is one sold line in API responses
type SaleItemResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SaleResponse is the API view of a persisted sale
type SaleResponse struct {
	ID            uuid.UUID          `json:"id"`
	SaleNumber    string             `json:"sale_number"`
	CustomerID    *uuid.UUID         `json:"customer_id,omitempty"`
	CustomerName  string             `json:"customer_name,omitempty"`
	PaymentMethod string             `json:"payment_method"`
	Observations  string             `json:"observations,omitempty"`
	Total         decimal.Decimal    `json:"total"`
	Items         []SaleItemResponse `json:"items"`
	CompletedAt   time.Time          `json:"completed_at"`
}

// DailySummaryResponse aggregates one day of sales
type DailySummaryResponse struct {
	Date       string          `json:"date"`
	SalesCount int             `json:"sales_count"`
	ItemsSold  int             `json:"items_sold"`
	Total      decimal.Decimal `json:"total"`
}

// ToSaleResponse converts a sale to its API view
func ToSaleResponse(sale *sales.Sale) *SaleResponse {
	items := make([]SaleItemResponse, 0, len(sale.Items))
	for _, item := range sale.Items {
		items = append(items, SaleItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Subtotal:    item.Subtotal,
		})
	}
	return &SaleResponse{
		ID:            sale.ID,
		SaleNumber:    sale.SaleNumber,
		CustomerID:    sale.CustomerID,
		CustomerName:  sale.CustomerName,
		PaymentMethod: string(sale.PaymentMethod),
		Observations:  sale.Observations,
		Total:         sale.Total,
		Items:         items,
		CompletedAt:   sale.CompletedAt,
	}
}
