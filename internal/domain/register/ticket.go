package register

import (
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TicketStatus represents the lifecycle state of a ticket
type TicketStatus string

const (
	TicketStatusActive    TicketStatus = "active"
	TicketStatusSaved     TicketStatus = "saved"
	TicketStatusCompleted TicketStatus = "completed"
	TicketStatusDeleted   TicketStatus = "deleted"
)

// IsValid checks if the ticket status is valid
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusActive, TicketStatusSaved, TicketStatusCompleted, TicketStatusDeleted:
		return true
	}
	return false
}

// CartItem is one line in a ticket. The price is captured when the line
// is added and is not re-synced if the catalog price changes later.
type CartItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Barcode   string          `json:"barcode,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Subtotal returns quantity times unit price for this line
func (i CartItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Ticket is one in-progress sale session. Items keep insertion order.
// Total is recomputed inside every item-affecting method so it can never
// go stale relative to the lines.
type Ticket struct {
	ID           uuid.UUID    `json:"id"`
	Items        []CartItem   `json:"items"`
	CustomerID   *uuid.UUID   `json:"customer_id,omitempty"`
	CustomerName string       `json:"customer_name,omitempty"`
	Observations string       `json:"observations,omitempty"`
	Total        decimal.Decimal `json:"total"`
	Status       TicketStatus `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
}

// NewTicket creates an empty active ticket
func NewTicket() *Ticket {
	return &Ticket{
		ID:        uuid.New(),
		Items:     []CartItem{},
		Total:     decimal.Zero,
		Status:    TicketStatusActive,
		CreatedAt: time.Now(),
	}
}

// AddLine adds one unit of the product to the ticket. The product's
// cached stock bounds the resulting line quantity.
func (t *Ticket) AddLine(product catalog.Product) error {
	for i := range t.Items {
		if t.Items[i].ProductID != product.ID {
			continue
		}
		if t.Items[i].Quantity >= product.Stock {
			return shared.ErrInsufficientStock
		}
		t.Items[i].Quantity++
		t.recalculateTotal()
		return nil
	}

	if product.Stock == 0 {
		return shared.ErrOutOfStock
	}

	t.Items = append(t.Items, CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		Barcode:   product.Barcode,
		UnitPrice: product.Price,
		Quantity:  1,
	})
	t.recalculateTotal()
	return nil
}

// SetLineQuantity sets the line for the product to the given quantity.
// Quantity zero removes the line. A missing line is a no-op.
func (t *Ticket) SetLineQuantity(product catalog.Product, quantity int) error {
	if quantity < 0 {
		return shared.ErrInvalidInput
	}
	if quantity == 0 {
		t.RemoveLine(product.ID)
		return nil
	}
	for i := range t.Items {
		if t.Items[i].ProductID != product.ID {
			continue
		}
		if quantity > product.Stock {
			return shared.ErrInsufficientStock
		}
		t.Items[i].Quantity = quantity
		t.recalculateTotal()
		return nil
	}
	return nil
}

// RemoveLine removes the line for the product. Removing an absent line
// is a no-op, so repeated removals are idempotent.
func (t *Ticket) RemoveLine(productID uuid.UUID) {
	for i := range t.Items {
		if t.Items[i].ProductID == productID {
			t.Items = append(t.Items[:i], t.Items[i+1:]...)
			t.recalculateTotal()
			return
		}
	}
}

// FindLine returns the line for the product, or nil if absent
func (t *Ticket) FindLine(productID uuid.UUID) *CartItem {
	for i := range t.Items {
		if t.Items[i].ProductID == productID {
			return &t.Items[i]
		}
	}
	return nil
}

// IsEmpty reports whether the ticket has no lines
func (t *Ticket) IsEmpty() bool {
	return len(t.Items) == 0
}

// SetCustomer assigns the customer reference. The ticket only keeps the
// display name and an optional id; it does not own the customer record.
func (t *Ticket) SetCustomer(customerID *uuid.UUID, name string) {
	t.CustomerID = customerID
	t.CustomerName = name
}

// SetObservations assigns free-text notes to the ticket
func (t *Ticket) SetObservations(text string) {
	t.Observations = text
}

// MarkSaved marks the ticket as explicitly persisted
func (t *Ticket) MarkSaved() {
	t.Status = TicketStatusSaved
}

// MarkDeleted soft-deletes the ticket. Items and total stay readable so
// the ticket can be restored later.
func (t *Ticket) MarkDeleted() {
	t.Status = TicketStatusDeleted
}

// Restore reactivates a previously deleted ticket
func (t *Ticket) Restore() {
	t.Status = TicketStatusActive
}

// Reset recycles the ticket slot after a completed sale: same id, fresh
// empty cart, new creation timestamp.
func (t *Ticket) Reset() {
	t.Items = []CartItem{}
	t.Total = decimal.Zero
	t.CustomerID = nil
	t.CustomerName = ""
	t.Observations = ""
	t.Status = TicketStatusActive
	t.CreatedAt = time.Now()
}

// Clone returns an independent copy safe to hand out of the store
func (t *Ticket) Clone() Ticket {
	clone := *t
	clone.Items = make([]CartItem, len(t.Items))
	copy(clone.Items, t.Items)
	if t.CustomerID != nil {
		id := *t.CustomerID
		clone.CustomerID = &id
	}
	return clone
}

// recalculateTotal recomputes the total from the lines
func (t *Ticket) recalculateTotal() {
	total := decimal.Zero
	for _, item := range t.Items {
		total = total.Add(item.Subtotal())
	}
	t.Total = total
}
