package register

import (
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/register"
	"github.com/shopspring/decimal"
)

// CartItemResponse is one ticket line in API responses
type CartItemResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Barcode   string          `json:"barcode,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// TicketResponse is the API view of a ticket
type TicketResponse struct {
	ID           uuid.UUID          `json:"id"`
	Items        []CartItemResponse `json:"items"`
	CustomerID   *uuid.UUID         `json:"customer_id,omitempty"`
	CustomerName string             `json:"customer_name,omitempty"`
	Observations string             `json:"observations,omitempty"`
	Total        decimal.Decimal    `json:"total"`
	Status       string             `json:"status"`
	CreatedAt    time.Time          `json:"created_at"`
}

// TicketListResponse is the register overview: visible tickets plus the
// focused ticket id
type TicketListResponse struct {
	Tickets        []TicketResponse `json:"tickets"`
	ActiveTicketID uuid.UUID        `json:"active_ticket_id"`
}

// AddItemRequest adds one unit of a product to the focused ticket
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
}

// UpdateQuantityRequest sets a line quantity on the focused ticket
type UpdateQuantityRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"min=0"`
}

// SetCustomerRequest assigns a customer reference to a ticket
type SetCustomerRequest struct {
	CustomerID   *uuid.UUID `json:"customer_id"`
	CustomerName string     `json:"customer_name" binding:"required,max=200"`
}

// SetObservationsRequest assigns free-text notes to a ticket
type SetObservationsRequest struct {
	Observations string `json:"observations"`
}

// CheckoutRequest finalizes a ticket into a persisted sale
type CheckoutRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required,paymentmethod"`
}

// CheckoutResponse confirms a persisted sale
type CheckoutResponse struct {
	SaleID        uuid.UUID       `json:"sale_id"`
	SaleNumber    string          `json:"sale_number"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	ItemCount     int             `json:"item_count"`
	CompletedAt   time.Time       `json:"completed_at"`
}

// ToTicketResponse converts a ticket snapshot to its API view
func ToTicketResponse(ticket register.Ticket) TicketResponse {
	items := make([]CartItemResponse, 0, len(ticket.Items))
	for _, item := range ticket.Items {
		items = append(items, CartItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Barcode:   item.Barcode,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal(),
		})
	}
	return TicketResponse{
		ID:           ticket.ID,
		Items:        items,
		CustomerID:   ticket.CustomerID,
		CustomerName: ticket.CustomerName,
		Observations: ticket.Observations,
		Total:        ticket.Total,
		Status:       string(ticket.Status),
		CreatedAt:    ticket.CreatedAt,
	}
}
