package partner

import (
	"strings"
	"time"

	"github.com/pos/backend/internal/domain/shared"
)

// Customer represents a store customer
// The register references customers by display name only (weak reference);
// this aggregate owns the full record including loyalty points.
type Customer struct {
	shared.BaseAggregateRoot
	Name   string `gorm:"type:varchar(200);not null;index"`
	Phone  string `gorm:"type:varchar(30)"`
	Email  string `gorm:"type:varchar(200)"`
	Points int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new customer
func NewCustomer(name, phone, email string) (*Customer, error) {
	if err := validateCustomerName(name); err != nil {
		return nil, err
	}
	if email != "" && !strings.Contains(email, "@") {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Email address is not valid")
	}

	customer := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Phone:             phone,
		Email:             email,
	}

	customer.AddDomainEvent(NewCustomerCreatedEvent(customer))

	return customer, nil
}

// Update updates the customer's contact information
func (c *Customer) Update(name, phone, email string) error {
	if err := validateCustomerName(name); err != nil {
		return err
	}
	if email != "" && !strings.Contains(email, "@") {
		return shared.NewDomainError("INVALID_EMAIL", "Email address is not valid")
	}

	c.Name = name
	c.Phone = phone
	c.Email = email
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// AddPoints adds loyalty points to the customer
func (c *Customer) AddPoints(points int) error {
	if points <= 0 {
		return shared.NewDomainError("INVALID_POINTS", "Points must be positive")
	}

	c.Points += points
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// validateCustomerName validates the customer name
func validateCustomerName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 200 characters")
	}
	return nil
}
