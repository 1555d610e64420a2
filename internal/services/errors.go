package services

import (
	"errors"
	"fmt"
	"net/http"

	"ecotrace/internal/validation"
)

// Error types
const (
	ErrTypeValidation     = "VALIDATION_ERROR"
	ErrTypeConflict       = "CONFLICT"
	ErrTypeAuthentication = "AUTHENTICATION_ERROR"
	ErrTypeNotFound       = "NOT_FOUND"
	ErrTypeInternal       = "INTERNAL_ERROR"
)

// ServiceError represents a structured service error
type ServiceError struct {
	Type       string                  `json:"type"`
	Message    string                  `json:"message"`
	Code       string                  `json:"code,omitempty"`
	Fields     []validation.FieldError `json:"fields,omitempty"`
	StatusCode int                     `json:"-"`
	Cause      error                   `json:"-"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// GetStatusCode returns the HTTP status code for this error
func (e *ServiceError) GetStatusCode() int {
	if e.StatusCode > 0 {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

// ===============================
// ERROR CONSTRUCTORS
// ===============================

// NewValidationError creates a validation error. Field errors carried by
// cause are exposed on Fields.
func NewValidationError(message string, cause error) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeValidation,
		Message:    message,
		Fields:     validation.Fields(cause),
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewConflictError creates a conflict error
func NewConflictError(message, code string) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeConflict,
		Message:    message,
		Code:       code,
		StatusCode: http.StatusConflict,
	}
}

// NewAuthenticationError creates an authentication error. The message is
// shown to clients as-is, so it must not reveal which credential failed.
func NewAuthenticationError(message string) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeAuthentication,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string, cause error) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// ===============================
// PREDICATES
// ===============================

// ErrorType returns the ServiceError type of err, or "" if err is not one.
func ErrorType(err error) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Type
	}
	return ""
}

func IsValidationError(err error) bool { return ErrorType(err) == ErrTypeValidation }
func IsConflictError(err error) bool   { return ErrorType(err) == ErrTypeConflict }
func IsAuthError(err error) bool       { return ErrorType(err) == ErrTypeAuthentication }
func IsNotFoundError(err error) bool   { return ErrorType(err) == ErrTypeNotFound }
