package dto

import (
	"errors"
	"net/http"

	"github.com/erp/procurement/internal/domain/shared"
)

// Domain error codes are passed through unchanged
const (
	ErrCodeValidation          = shared.CodeValidation
	ErrCodeNotFound            = shared.CodeNotFound
	ErrCodeInvalidState        = shared.CodeInvalidState
	ErrCodeQuantityExceeded    = shared.CodeQuantityExceeded
	ErrCodeConcurrencyConflict = shared.CodeConcurrencyConflict
	ErrCodeDuplicateRequest    = shared.CodeDuplicateRequest
)

// Transport error codes
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeRouteNotFound   = "ROUTE_NOT_FOUND"
	ErrCodeUnavailable     = "SERVICE_UNAVAILABLE"
)

// internalErrorMessage hides infrastructure failures from clients
const internalErrorMessage = "An internal error occurred"

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:          http.StatusBadRequest,
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeRouteNotFound:       http.StatusNotFound,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeQuantityExceeded:    http.StatusUnprocessableEntity,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeDuplicateRequest:    http.StatusConflict,
	ErrCodeRequestTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:         http.StatusTooManyRequests,
	ErrCodeUnavailable:         http.StatusServiceUnavailable,
	ErrCodeInternal:            http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorResponseFor translates err into an HTTP status and error envelope.
// Errors that are not domain errors become a 500 with a generic message.
func ErrorResponseFor(err error, requestID string) (int, Response) {
	var qtyErr *shared.QuantityExceededError
	if errors.As(err, &qtyErr) {
		remaining, requested := qtyErr.Remaining, qtyErr.Requested
		resp := NewErrorResponseWithRequestID(ErrCodeQuantityExceeded, qtyErr.Message, requestID)
		resp.Error.Details = []ErrorDetail{{
			Message:     qtyErr.Message,
			ItemID:      qtyErr.ItemID,
			ProductName: qtyErr.ProductName,
			Remaining:   &remaining,
			Requested:   &requested,
		}}
		return http.StatusUnprocessableEntity, resp
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status, known := ErrorCodeHTTPStatus[domainErr.Code]
		if !known || status == http.StatusInternalServerError {
			return http.StatusInternalServerError,
				NewErrorResponseWithRequestID(ErrCodeInternal, internalErrorMessage, requestID)
		}
		return status, NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, requestID)
	}

	return http.StatusInternalServerError,
		NewErrorResponseWithRequestID(ErrCodeInternal, internalErrorMessage, requestID)
}
