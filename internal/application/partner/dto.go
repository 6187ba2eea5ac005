package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/partner"
)

// CreateCustomerRequest creates a new customer
type CreateCustomerRequest struct {
	Name  string `json:"name" binding:"required,max=200"`
	Phone string `json:"phone" binding:"max=30"`
	Email string `json:"email" binding:"omitempty,email"`
}

// UpdateCustomerRequest updates an existing customer
type UpdateCustomerRequest struct {
	Name  string `json:"name" binding:"required,max=200"`
	Phone string `json:"phone" binding:"max=30"`
	Email string `json:"email" binding:"omitempty,email"`
}

// AddPointsRequest credits loyalty points to a customer
type AddPointsRequest struct {
	Points int `json:"points" binding:"required,min=1"`
}

// CustomerResponse is the API view of a customer
type CustomerResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToCustomerResponse converts a customer to its API view
func ToCustomerResponse(customer *partner.Customer) *CustomerResponse {
	return &CustomerResponse{
		ID:        customer.ID,
		Name:      customer.Name,
		Phone:     customer.Phone,
		Email:     customer.Email,
		Points:    customer.Points,
		CreatedAt: customer.CreatedAt,
		UpdatedAt: customer.UpdatedAt,
	}
}
