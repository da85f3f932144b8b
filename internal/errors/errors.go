package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "validation"
	ErrorTypeNetwork        ErrorType = "network"
	ErrorTypeInitialization ErrorType = "initialization"
	ErrorTypeRecognition    ErrorType = "recognition"
	ErrorTypePreprocessing  ErrorType = "preprocessing"
	ErrorTypeAnalysis       ErrorType = "analysis"
	ErrorTypeTimeout        ErrorType = "timeout"
	ErrorTypeTerminated     ErrorType = "terminated"
	ErrorTypeInternal       ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
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

// WithDetails returns a copy of the error carrying extra detail text
func (e *AppError) WithDetails(details string) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

func newError(t ErrorType, status int, message string, cause error) *AppError {
	return &AppError{
		Type:       t,
		Message:    message,
		StatusCode: status,
		Cause:      cause,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return newError(ErrorTypeValidation, http.StatusBadRequest, message, cause)
}

// NewNetworkError creates a new network error
func NewNetworkError(message string, cause error) *AppError {
	return newError(ErrorTypeNetwork, http.StatusBadGateway, message, cause)
}

// NewInitializationError reports a recognizer that could not reach the ready state
func NewInitializationError(message string, cause error) *AppError {
	return newError(ErrorTypeInitialization, http.StatusServiceUnavailable, message, cause)
}

// NewRecognitionError reports a failed text recognition. It aborts a verification.
func NewRecognitionError(message string, cause error) *AppError {
	return newError(ErrorTypeRecognition, http.StatusUnprocessableEntity, message, cause)
}

// NewPreprocessingError describes a preprocessing fallback
func NewPreprocessingError(message string, cause error) *AppError {
	return newError(ErrorTypePreprocessing, http.StatusUnprocessableEntity, message, cause)
}

// NewAnalysisError describes a forensic analyzer that fell back to its neutral report
func NewAnalysisError(message string, cause error) *AppError {
	return newError(ErrorTypeAnalysis, http.StatusUnprocessableEntity, message, cause)
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(message string, cause error) *AppError {
	return newError(ErrorTypeTimeout, http.StatusGatewayTimeout, message, cause)
}

// NewTerminatedError reports use of a resource after it was shut down
func NewTerminatedError(message string, cause error) *AppError {
	return newError(ErrorTypeTerminated, http.StatusServiceUnavailable, message, cause)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *AppError {
	return newError(ErrorTypeInternal, http.StatusInternalServerError, message, cause)
}

// IsType reports whether any AppError in err's chain has the given type
func IsType(err error, errorType ErrorType) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Type == errorType {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// GetStatusCode extracts the HTTP status code from an error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
