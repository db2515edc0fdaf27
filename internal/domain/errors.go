package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for common error conditions.
var (
	// ErrNotFound indicates that the ATIP API confirmed a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that request parameters are invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstream indicates that the ATIP API answered with a non-success status
	// or could not be reached.
	ErrUpstream = errors.New("upstream error")

	// ErrServiceUnavailable indicates that the ATIP API is unavailable.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrMalformedResponse indicates that a response body could not be decoded.
	ErrMalformedResponse = errors.New("malformed response")
)

// ValidationError represents a validation error for a specific field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NotFoundError provides details about a record the API reported as absent.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// APIError is returned when an ATIP API call fails. StatusCode is zero for
// transport failures, in which case Cause holds the transport error.
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("API error on %s: %s", e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error on %s (status %d): %s", e.Endpoint, e.StatusCode, e.Message)
}

// Unwrap returns the underlying cause error.
func (e *APIError) Unwrap() error {
	return e.Cause
}

// Is reports whether the error matches one of the domain sentinels. Every
// APIError is an ErrUpstream; a 404 is additionally an ErrNotFound and a 503
// an ErrServiceUnavailable.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUpstream:
		return true
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrServiceUnavailable:
		return e.StatusCode == http.StatusServiceUnavailable
	}
	return false
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{
		Entity: entity,
		ID:     id,
	}
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewAPIError creates a new APIError.
func NewAPIError(endpoint string, statusCode int, message string, cause error) *APIError {
	return &APIError{
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Message:    message,
		Cause:      cause,
	}
}
