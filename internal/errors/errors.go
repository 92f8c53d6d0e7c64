package errors

import (
	"errors"
	"fmt"
)

// OntoError is the structured error type for ontosearch.
// It carries enough context for logging, CLI presentation, and errors.Is matching.
type OntoError struct {
	// Code is the unique error code (e.g., "ERR_403_INVALID_PATTERN").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Validation, Internal).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *OntoError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *OntoError) Unwrap() error {
	return e.Cause
}

// Is matches another OntoError by code.
func (e *OntoError) Is(target error) bool {
	if t, ok := target.(*OntoError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
func (e *OntoError) WithDetail(key, value string) *OntoError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *OntoError) WithSuggestion(suggestion string) *OntoError {
	e.Suggestion = suggestion
	return e
}

// New creates a new OntoError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *OntoError {
	return &OntoError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates an OntoError from an existing error.
// The error's message becomes the OntoError message.
func Wrap(code string, err error) *OntoError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *OntoError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// IOError creates an I/O-related error.
func IOError(message string, cause error) *OntoError {
	return New(ErrCodeFileNotFound, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *OntoError {
	return New(ErrCodeInvalidInput, message, cause)
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var oe *OntoError
	if errors.As(err, &oe) {
		return oe.Retryable
	}
	return false
}

// GetCode extracts the error code from an OntoError anywhere in the chain.
// Returns empty string if there is none.
func GetCode(err error) string {
	var oe *OntoError
	if errors.As(err, &oe) {
		return oe.Code
	}
	return ""
}

// GetCategory extracts the category from an OntoError anywhere in the chain.
func GetCategory(err error) Category {
	var oe *OntoError
	if errors.As(err, &oe) {
		return oe.Category
	}
	return ""
}
