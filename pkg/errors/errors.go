package errors

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeUnauthenticated  ErrorType = "unauthenticated"
	ErrorTypeForbidden        ErrorType = "forbidden"
	ErrorTypeNotFound         ErrorType = "not_found"
	ErrorTypeDuplicateRequest ErrorType = "duplicate_request"
	ErrorTypeConflict         ErrorType = "conflict"
	ErrorTypeInvalidArgument  ErrorType = "invalid_argument"
	ErrorTypeTooManyRequests  ErrorType = "too_many_requests"
	ErrorTypeServerFault      ErrorType = "server_fault"
)

// APIError represents a structured API error
type APIError struct {
	Type        ErrorType `json:"type"`
	Code        string    `json:"code"`
	Message     string    `json:"message"`
	Details     string    `json:"details,omitempty"`
	HTTPStatus  int       `json:"-"`
	InternalErr error     `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Message, e.Details, e.Code)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Unwrap returns the underlying error
func (e *APIError) Unwrap() error {
	return e.InternalErr
}

// Is matches any APIError of the same type, so callers can test
// errors.Is(err, errors.ErrForbidden) without comparing messages.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewAPIError creates a new API error
func NewAPIError(errorType ErrorType, code, message string, httpStatus int) *APIError {
	return &APIError{
		Type:       errorType,
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// NewAPIErrorWithCause creates a new API error with an underlying cause
func NewAPIErrorWithCause(errorType ErrorType, code, message string, httpStatus int, cause error) *APIError {
	return &APIError{
		Type:        errorType,
		Code:        code,
		Message:     message,
		HTTPStatus:  httpStatus,
		InternalErr: cause,
	}
}

// Sentinels for errors.Is checks
var (
	ErrUnauthenticated  = &APIError{Type: ErrorTypeUnauthenticated}
	ErrForbidden        = &APIError{Type: ErrorTypeForbidden}
	ErrNotFound         = &APIError{Type: ErrorTypeNotFound}
	ErrDuplicateRequest = &APIError{Type: ErrorTypeDuplicateRequest}
	ErrConflict         = &APIError{Type: ErrorTypeConflict}
	ErrInvalidArgument  = &APIError{Type: ErrorTypeInvalidArgument}
	ErrTooManyRequests  = &APIError{Type: ErrorTypeTooManyRequests}
	ErrServerFault      = &APIError{Type: ErrorTypeServerFault}
)

// Predefined error constructors

// Unauthenticated creates an error for a missing or invalid credential
func Unauthenticated(message string) *APIError {
	return NewAPIError(ErrorTypeUnauthenticated, "UNAUTHENTICATED", message, http.StatusUnauthorized)
}

// Forbidden creates an error for a role, ownership or visibility denial
func Forbidden(message string) *APIError {
	return NewAPIError(ErrorTypeForbidden, "FORBIDDEN", message, http.StatusForbidden)
}

// NotFound creates a not found error
func NotFound(resource string) *APIError {
	return NewAPIError(ErrorTypeNotFound, "NOT_FOUND", fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// DuplicateRequest creates an error for an entity that already exists
func DuplicateRequest(message string) *APIError {
	return NewAPIError(ErrorTypeDuplicateRequest, "DUPLICATE_REQUEST", message, http.StatusConflict)
}

// Conflict creates an error for an operation not allowed in the entity's current state
func Conflict(message string) *APIError {
	return NewAPIError(ErrorTypeConflict, "CONFLICT", message, http.StatusConflict)
}

// InvalidArgument creates a validation error
func InvalidArgument(message string) *APIError {
	return NewAPIError(ErrorTypeInvalidArgument, "INVALID_ARGUMENT", message, http.StatusBadRequest)
}

// TooManyRequests creates a throttling error
func TooManyRequests(message string) *APIError {
	return NewAPIError(ErrorTypeTooManyRequests, "TOO_MANY_REQUESTS", message, http.StatusTooManyRequests)
}

// ServerFault creates an internal error; cause is kept for logging only
func ServerFault(operation string, cause error) *APIError {
	return NewAPIErrorWithCause(ErrorTypeServerFault, "SERVER_FAULT",
		fmt.Sprintf("Operation failed: %s", operation),
		http.StatusInternalServerError, cause)
}

// Error handling utilities

// GetAPIError extracts APIError from an error chain
func GetAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

// HandleDatabaseError maps a store error to the taxonomy
func HandleDatabaseError(err error, resource, operation string) *APIError {
	if err == nil {
		return nil
	}
	if apiErr := GetAPIError(err); apiErr != nil {
		return apiErr
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound(resource)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return DuplicateRequest(fmt.Sprintf("%s already exists", resource))
	default:
		return ServerFault(operation, err)
	}
}
