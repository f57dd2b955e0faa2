package shared

import (
	"errors"
	"fmt"
)

// Error codes shared by every bounded context
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidState        = "INVALID_STATE"
	CodeQuantityExceeded    = "QUANTITY_EXCEEDED"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeDuplicateRequest    = "DUPLICATE_REQUEST"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError carrying the same code.
// This lets callers test errors.Is(err, shared.ErrInvalidState) regardless of the message.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrValidation          = NewDomainError(CodeValidation, "Invalid input provided")
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrQuantityExceeded    = NewDomainError(CodeQuantityExceeded, "Requested quantity exceeds remaining quantity")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrDuplicateRequest    = NewDomainError(CodeDuplicateRequest, "Request has already been processed")
)

// NewValidationError creates a VALIDATION_ERROR domain error
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewInvalidStateError creates an INVALID_STATE domain error
func NewInvalidStateError(message string) *DomainError {
	return NewDomainError(CodeInvalidState, message)
}

// NewNotFoundError creates a NOT_FOUND domain error
func NewNotFoundError(message string) *DomainError {
	return NewDomainError(CodeNotFound, message)
}

// NewConcurrencyError creates a CONCURRENCY_CONFLICT domain error
func NewConcurrencyError(message string) *DomainError {
	return NewDomainError(CodeConcurrencyConflict, message)
}

// QuantityExceededError is returned when a receipt asks for more than an order line has left.
// It unwraps to a QUANTITY_EXCEEDED DomainError.
type QuantityExceededError struct {
	*DomainError
	ItemID      string `json:"item_id"`
	ProductName string `json:"product_name"`
	Remaining   int64  `json:"remaining"`
	Requested   int64  `json:"requested"`
}

// NewQuantityExceededError creates a QuantityExceededError for one order line
func NewQuantityExceededError(itemID, productName string, remaining, requested int64) *QuantityExceededError {
	label := productName
	if label == "" {
		label = itemID
	}
	return &QuantityExceededError{
		DomainError: NewDomainError(CodeQuantityExceeded,
			fmt.Sprintf("cannot receive %d units of %s; only %d remain", requested, label, remaining)),
		ItemID:      itemID,
		ProductName: productName,
		Remaining:   remaining,
		Requested:   requested,
	}
}

// Unwrap exposes the underlying DomainError
func (e *QuantityExceededError) Unwrap() error {
	return e.DomainError
}

// ErrorCode extracts the domain error code from err, or "" if err is not a domain error
func ErrorCode(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}
