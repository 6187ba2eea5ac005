package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapError builds a domain error around an underlying failure while
// keeping the original error available through errors.Unwrap.
func WrapError(err error, code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		cause:   err,
	}
}

// Unwrap returns the underlying error, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is matches domain errors by code so wrapped errors still compare
// against the sentinels with errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Register errors surfaced to the cashier as warnings
var (
	ErrProductNotFound   = NewDomainError("PRODUCT_NOT_FOUND", "Product not found in catalog")
	ErrOutOfStock        = NewDomainError("OUT_OF_STOCK", "Product has no stock available")
	ErrInsufficientStock = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrEmptyCart         = NewDomainError("EMPTY_CART", "Ticket has no items")
	ErrCacheLoadFailed   = NewDomainError("CACHE_LOAD_FAILED", "Failed to refresh cached reference data")
)
