package sales

import (
	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeSale = "Sale"

// Event type constants
const (
	EventTypeSaleCompleted = "SaleCompleted"
)

// SaleCompletedItem carries one sold line inside a SaleCompletedEvent
type SaleCompletedItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// SaleCompletedEvent is published when a checkout is persisted.
// Inventory subscribes to it to decrement authoritative stock.
type SaleCompletedEvent struct {
	shared.BaseDomainEvent
	SaleID        uuid.UUID           `json:"sale_id"`
	SaleNumber    string              `json:"sale_number"`
	PaymentMethod PaymentMethod       `json:"payment_method"`
	Total         decimal.Decimal     `json:"total"`
	Items         []SaleCompletedItem `json:"items"`
}

// NewSaleCompletedEvent creates a new SaleCompletedEvent
func NewSaleCompletedEvent(sale *Sale) *SaleCompletedEvent {
	items := make([]SaleCompletedItem, 0, len(sale.Items))
	for _, item := range sale.Items {
		items = append(items, SaleCompletedItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	return &SaleCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCompleted, AggregateTypeSale, sale.ID),
		SaleID:          sale.ID,
		SaleNumber:      sale.SaleNumber,
		PaymentMethod:   sale.PaymentMethod,
		Total:           sale.Total,
		Items:           items,
	}
}
