package errors

import (
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	// ErrorTypeCodec covers local image read/encode failures
	ErrorTypeCodec ErrorType = "codec"
	// ErrorTypeTransport covers failures to reach the backend at all
	ErrorTypeTransport ErrorType = "transport"
	// ErrorTypeApplication covers errors explicitly reported by a reachable backend
	ErrorTypeApplication ErrorType = "application"
	// ErrorTypeSchema covers analysis results with an invalid shape
	ErrorTypeSchema ErrorType = "schema"
	// ErrorTypeUpstream covers failures of the backend's call to the external model
	ErrorTypeUpstream ErrorType = "upstream"
	// ErrorTypeValidation covers malformed incoming requests
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeInternal   ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// UserMessage returns the message safe to surface across the network
// boundary. Causes stay in logs.
func (e *AppError) UserMessage() string {
	return e.Message
}

// NewCodecError creates an error for a local image read/encode failure
func NewCodecError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeCodec,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
		Cause:      cause,
	}
}

// NewTransportError creates an error for an unreachable or misbehaving endpoint
func NewTransportError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeTransport,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

// NewApplicationError creates an error carrying a failure the backend reported itself
func NewApplicationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeApplication,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

// NewSchemaError creates an error for a result that violates the expected shape
func NewSchemaError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeSchema,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
		Cause:      cause,
	}
}

// NewUpstreamError creates an error for a failed external model call
func NewUpstreamError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeUpstream,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// IsType checks if the error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == errorType
	}
	return false
}

// GetStatusCode extracts the HTTP status code from an error
func GetStatusCode(err error) int {
	if appErr, ok := err.(*AppError); ok {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
