package dto

import "net/http"

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeValidation   = "ERR_VALIDATION"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	ErrCodeInvalidState      = "ERR_INVALID_STATE"
	ErrCodeBusinessRule      = "ERR_BUSINESS_RULE"
	ErrCodeProductNotFound   = "ERR_PRODUCT_NOT_FOUND"
	ErrCodeOutOfStock        = "ERR_OUT_OF_STOCK"
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
	ErrCodeEmptyCart         = "ERR_EMPTY_CART"
	ErrCodeInvalidPayment    = "ERR_INVALID_PAYMENT_METHOD"
)

// Infrastructure error codes
const (
	ErrCodeCacheLoadFailed = "ERR_CACHE_LOAD_FAILED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors map to 422 so the client can distinguish a
	// well-formed request the register refused from a malformed one
	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:      http.StatusUnprocessableEntity,
	ErrCodeOutOfStock:        http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
	ErrCodeEmptyCart:         http.StatusUnprocessableEntity,
	ErrCodeInvalidPayment:    http.StatusUnprocessableEntity,

	ErrCodeProductNotFound: http.StatusNotFound,

	ErrCodeCacheLoadFailed: http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainErrorCodeMapping maps domain error codes to API error codes
var domainErrorCodeMapping = map[string]string{
	"NOT_FOUND":              ErrCodeNotFound,
	"ALREADY_EXISTS":         ErrCodeAlreadyExists,
	"INVALID_INPUT":          ErrCodeInvalidInput,
	"INVALID_STATE":          ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT":   ErrCodeConcurrencyConflict,
	"PRODUCT_NOT_FOUND":      ErrCodeProductNotFound,
	"OUT_OF_STOCK":           ErrCodeOutOfStock,
	"INSUFFICIENT_STOCK":     ErrCodeInsufficientStock,
	"EMPTY_CART":             ErrCodeEmptyCart,
	"INVALID_PAYMENT_METHOD": ErrCodeInvalidPayment,
	"CACHE_LOAD_FAILED":      ErrCodeCacheLoadFailed,
	"INVALID_NAME":           ErrCodeValidation,
	"INVALID_CATEGORY":       ErrCodeValidation,
	"INVALID_PRICE":          ErrCodeValidation,
	"INVALID_STOCK":          ErrCodeValidation,
	"INVALID_EMAIL":          ErrCodeValidation,
	"INVALID_POINTS":         ErrCodeValidation,
	"INVALID_BARCODE":        ErrCodeValidation,
	"INVALID_QUANTITY":       ErrCodeValidation,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Unknown codes pass through unchanged.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := domainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
