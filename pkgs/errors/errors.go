package errors

import (
	"errors"
	"fmt"
)

// Error types for different categories of failures
const (
	// Input/File errors
	ErrInputRead    = "INPUT_READ_ERROR"
	ErrFileParse    = "FILE_PARSE_ERROR"
	ErrFileNotFound = "FILE_NOT_FOUND"

	// Conversion errors
	ErrInvariant           = "INVARIANT_VIOLATION"
	ErrGeneration          = "GENERATION_ERROR"
	ErrUnsupportedTemplate = "UNSUPPORTED_TEMPLATE"
)

// ConvertError represents a structured error with type and cause
type ConvertError struct {
	Type    string
	Message string
	Cause   error
}

// Error implements the error interface
func (e *ConvertError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap allows error unwrapping
func (e *ConvertError) Unwrap() error {
	return e.Cause
}

// New creates a new ConvertError
func New(errorType, format string, args ...interface{}) *ConvertError {
	return &ConvertError{
		Type:    errorType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new ConvertError wrapping an existing error
func Wrap(errorType, message string, cause error) *ConvertError {
	return &ConvertError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// IsType checks if an error is of a specific type
func IsType(err error, errorType string) bool {
	var convErr *ConvertError
	if errors.As(err, &convErr) {
		return convErr.Type == errorType
	}
	return false
}
