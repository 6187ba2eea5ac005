package sales

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentMethod identifies how a sale was paid
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "efectivo"
	PaymentCard     PaymentMethod = "tarjeta"
	PaymentTransfer PaymentMethod = "transferencia"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return true
	}
	return false
}

// SaleItem is an immutable line snapshot taken at checkout time.
// Product name and unit price are copied so later catalog edits do not
// rewrite history.
type SaleItem struct {
	shared.BaseEntity
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Quantity    int             `gorm:"not null"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (SaleItem) TableName() string {
	return "sale_items"
}

// Sale is the persisted record of a completed checkout
type Sale struct {
	shared.BaseAggregateRoot
	SaleNumber    string          `gorm:"type:varchar(50);uniqueIndex;not null"`
	CustomerID    *uuid.UUID      `gorm:"type:uuid;index"`
	CustomerName  string          `gorm:"type:varchar(200)"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(20);not null"`
	Observations  string          `gorm:"type:text"`
	Total         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Items         []SaleItem      `gorm:"foreignKey:SaleID"`
	CompletedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// SaleLine is the input for one sale item
type SaleLine struct {
	ProductID   uuid.UUID
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// NewSale creates a completed sale from checkout lines. The total is
// computed from the lines, never taken from the caller.
func NewSale(lines []SaleLine, payment PaymentMethod, customerID *uuid.UUID, customerName, observations string) (*Sale, error) {
	if len(lines) == 0 {
		return nil, shared.ErrEmptyCart
	}
	if !payment.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Payment method '%s' is not supported", payment))
	}

	sale := &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SaleNumber:        generateSaleNumber(),
		CustomerID:        customerID,
		CustomerName:      customerName,
		PaymentMethod:     payment,
		Observations:      observations,
		Total:             decimal.Zero,
		CompletedAt:       time.Now(),
	}

	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
		}
		subtotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		sale.Items = append(sale.Items, SaleItem{
			BaseEntity:  shared.NewBaseEntity(),
			SaleID:      sale.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
			Subtotal:    subtotal,
		})
		sale.Total = sale.Total.Add(subtotal)
	}

	sale.AddDomainEvent(NewSaleCompletedEvent(sale))

	return sale, nil
}

// GetTotalMoney returns the sale total as a money value object
func (s *Sale) GetTotalMoney() valueobject.Money {
	return valueobject.NewMoneyMXN(s.Total)
}

// ItemCount returns the number of units sold across all lines
func (s *Sale) ItemCount() int {
	count := 0
	for _, item := range s.Items {
		count += item.Quantity
	}
	return count
}

// generateSaleNumber generates a sale number in the form POS-YYYYMMDD-xxxxxxxx
func generateSaleNumber() string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("POS-%s-%s", time.Now().Format("20060102"), suffix)
}
