package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Auth errors (AUTH-001 to AUTH-099)
	ErrCodeAuthRequired   ErrorCode = "AUTH-001"
	ErrCodeAuthRejected   ErrorCode = "AUTH-002"
	ErrCodeSessionExpired ErrorCode = "AUTH-003"
	ErrCodeTokenInvalid   ErrorCode = "AUTH-004"

	// API errors (API-001 to API-099)
	ErrCodeAPINotFound  ErrorCode = "API-001"
	ErrCodeAPIServer    ErrorCode = "API-002"
	ErrCodeAPIDecode    ErrorCode = "API-003"
	ErrCodeAPIRejected  ErrorCode = "API-004"
	ErrCodeAPIMalformed ErrorCode = "API-005"

	// Network errors (NET-001 to NET-099)
	ErrCodeNetworkUnreachable ErrorCode = "NET-001"
	ErrCodeNetworkTimeout     ErrorCode = "NET-002"

	// Validation errors (VAL-001 to VAL-099)
	ErrCodeValidationRequired ErrorCode = "VAL-001"
	ErrCodeValidationFormat   ErrorCode = "VAL-002"
	ErrCodeValidationRange    ErrorCode = "VAL-003"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeCredentialRead  ErrorCode = "IO-001"
	ErrCodeCredentialWrite ErrorCode = "IO-002"
	ErrCodeConfigRead      ErrorCode = "IO-003"
	ErrCodeConfigInvalid   ErrorCode = "IO-004"
	ErrCodeTerminal        ErrorCode = "IO-005"
)

// OpsdeckError represents an enhanced error with code, message, and suggestions
type OpsdeckError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *OpsdeckError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *OpsdeckError) Unwrap() error {
	return e.Cause
}

// New creates a new OpsdeckError
func New(code ErrorCode, message string) *OpsdeckError {
	return &OpsdeckError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new OpsdeckError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *OpsdeckError {
	return &OpsdeckError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *OpsdeckError) WithSuggestion(suggestion string) *OpsdeckError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *OpsdeckError) WithSuggestions(suggestions ...string) *OpsdeckError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// Code extracts the error code from an error chain.
// Returns an empty code when no OpsdeckError is present.
func Code(err error) ErrorCode {
	var oe *OpsdeckError
	if stderrors.As(err, &oe) {
		return oe.Code
	}
	return ""
}

// IsAuthFailure reports whether the error is an authentication or
// authorization failure (HTTP 401/403 classification).
func IsAuthFailure(err error) bool {
	switch Code(err) {
	case ErrCodeAuthRequired, ErrCodeAuthRejected, ErrCodeSessionExpired, ErrCodeTokenInvalid:
		return true
	}
	return false
}

// IsTransportFailure reports whether the error is a network-level failure.
func IsTransportFailure(err error) bool {
	switch Code(err) {
	case ErrCodeNetworkUnreachable, ErrCodeNetworkTimeout:
		return true
	}
	return false
}

// Common error constructors for frequently used errors

// NewSessionExpiredError creates the central auth-failure error raised when
// the API answers 401/403 to an authenticated request.
func NewSessionExpiredError(status int) *OpsdeckError {
	return New(ErrCodeSessionExpired, fmt.Sprintf("session expired (status %d)", status)).
		WithSuggestion("Run 'opsdeck auth login' to authenticate again")
}

// NewCredentialReadError creates a credential file read error
func NewCredentialReadError(path string, cause error) *OpsdeckError {
	return Wrap(ErrCodeCredentialRead, fmt.Sprintf("failed to read credentials: %s", path), cause).
		WithSuggestion("Run 'opsdeck auth login' to create new credentials").
		WithSuggestion("Check the file permissions")
}

// NewConfigInvalidError creates a config parse error
func NewConfigInvalidError(path string, cause error) *OpsdeckError {
	return Wrap(ErrCodeConfigInvalid, fmt.Sprintf("failed to parse config file: %s", path), cause).
		WithSuggestion("Check the YAML syntax").
		WithSuggestion("Delete the file to fall back to defaults")
}

// NewValidationError creates a client-side validation error for a form field
func NewValidationError(field, reason string) *OpsdeckError {
	return New(ErrCodeValidationFormat, fmt.Sprintf("invalid %s: %s", field, reason)).
		WithSuggestion("Correct the field and submit again")
}
