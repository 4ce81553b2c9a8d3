// Package apperror provides structured error handling for the ledger API.
// All business errors must use AppError so that callers can tell validation,
// not-found, conflict, integrity and transient failures apart.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes grouped by category.
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"
	CodeTimeout  = "TIMEOUT_ERROR"

	// Validation errors (400)
	CodeValidation = "VALIDATION_ERROR"

	// Ledger conflicts (409)
	CodeConflict               = "CONFLICT"
	CodeDuplicate              = "DUPLICATE_ENTRY"
	CodeInsufficientStock      = "INSUFFICIENT_STOCK"
	CodePaymentExceedsBalance  = "PAYMENT_EXCEEDS_BALANCE"
	CodeInactiveEntity         = "INACTIVE_ENTITY"
	CodeEntityReferenced       = "ENTITY_REFERENCED"
	CodeNegativeStock          = "NEGATIVE_STOCK"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"

	// Authorization errors (401, 403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"
)

// Category is the coarse failure class reported to callers.
type Category string

const (
	CategoryValidation Category = "validation"
	CategoryNotFound   Category = "not_found"
	CategoryConflict   Category = "conflict"
	CategoryIntegrity  Category = "integrity"
	CategoryTransient  Category = "transient"
	CategoryAuth       Category = "auth"
	CategoryInternal   Category = "internal"
)

// AppError is the standard error type for the platform.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, quantities, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Retryable marks transient failures the caller may retry.
	Retryable bool `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInsufficientStock reports the first line whose request exceeds stock on hand.
func NewInsufficientStock(productID string, requested, available fmt.Stringer) *AppError {
	return &AppError{
		Code:       CodeInsufficientStock,
		Message:    fmt.Sprintf("insufficient stock: requested %s, available %s", requested, available),
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"product_id": productID,
			"requested":  requested.String(),
			"available":  available.String(),
		},
	}
}

// NewPaymentExceedsBalance is returned when a payment is larger than the sale's remaining balance.
func NewPaymentExceedsBalance(saleID string, amount, remaining fmt.Stringer) *AppError {
	return &AppError{
		Code:       CodePaymentExceedsBalance,
		Message:    "payment exceeds balance",
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"sale_id":   saleID,
			"amount":    amount.String(),
			"remaining": remaining.String(),
		},
	}
}

// NewNegativeStock is returned when a non-correction adjustment would drive stock below zero.
func NewNegativeStock(productID string, current, change fmt.Stringer, reason string) *AppError {
	return &AppError{
		Code:       CodeNegativeStock,
		Message:    "adjustment would make stock negative",
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"product_id": productID,
			"current":    current.String(),
			"change":     change.String(),
			"reason":     reason,
		},
	}
}

// NewInactive is returned when an operation references a deactivated catalog entry.
func NewInactive(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeInactiveEntity,
		Message:    fmt.Sprintf("%s is inactive", entity),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewReferenced is returned when deleting a row would orphan dependent history.
func NewReferenced(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeEntityReferenced,
		Message:    fmt.Sprintf("%s is referenced by other records", entity),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewConcurrentModification creates a retryable lock/serialization error
func NewConcurrentModification(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeConcurrentModification,
		Message:    "Record was modified concurrently. Please retry.",
		HTTPStatus: http.StatusConflict,
		Retryable:  true,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewTimeout creates a retryable store timeout error (503)
func NewTimeout(err error) *AppError {
	return &AppError{
		Code:       CodeTimeout,
		Message:    "Store operation timed out",
		HTTPStatus: http.StatusServiceUnavailable,
		Retryable:  true,
		Err:        err,
	}
}

// NewDatabase reports a failed write; the surrounding transaction has been rolled back.
func NewDatabase(err error) *AppError {
	return &AppError{
		Code:       CodeDatabase,
		Message:    "Database operation failed",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403)
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewDuplicate creates a duplicate entry error (409)
func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with this %s already exists", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// --- Helper functions ---

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}

// IsRetryable reports whether the caller may retry the operation.
// Record-creating operations still need client-side deduplication.
func IsRetryable(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Retryable
	}
	return false
}

// CategoryOf classifies err. Unknown errors are internal.
func CategoryOf(err error) Category {
	appErr, ok := AsAppError(err)
	if !ok {
		return CategoryInternal
	}
	if appErr.Retryable {
		return CategoryTransient
	}
	switch appErr.Code {
	case CodeValidation:
		return CategoryValidation
	case CodeNotFound:
		return CategoryNotFound
	case CodeConflict, CodeDuplicate, CodeInsufficientStock, CodePaymentExceedsBalance,
		CodeInactiveEntity, CodeEntityReferenced, CodeNegativeStock:
		return CategoryConflict
	case CodeDatabase:
		return CategoryIntegrity
	case CodeUnauthorized, CodeForbidden:
		return CategoryAuth
	default:
		return CategoryInternal
	}
}
