package apperrors

import (
	"errors"
	"fmt"
)

// ErrorType represents the kinds of failure the core reports to its callers.
type ErrorType string

const (
	// ErrorTypeNotFound indicates a lookup by identifier or email yielded nothing
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeDuplicateEmail indicates a signup conflict on the unique email
	ErrorTypeDuplicateEmail ErrorType = "DUPLICATE_EMAIL"

	// ErrorTypeBackendUnavailable indicates the external store call failed
	ErrorTypeBackendUnavailable ErrorType = "BACKEND_UNAVAILABLE"

	// ErrorTypeValidation indicates missing or malformed input
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeUnauthorized indicates missing or bad credentials
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"

	// ErrorTypeForbidden indicates a session whose role may not perform the operation
	ErrorTypeForbidden ErrorType = "FORBIDDEN"

	// ErrorTypeInternal indicates an unexpected failure inside the process
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{Type: ErrorTypeNotFound, Message: message}
}

// NewDuplicateEmailError creates a signup conflict error for the given email
func NewDuplicateEmailError(email string) *AppError {
	return &AppError{Type: ErrorTypeDuplicateEmail, Message: fmt.Sprintf("email %q already registered", email)}
}

// NewBackendUnavailableError wraps a failed external store call
func NewBackendUnavailableError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeBackendUnavailable, Message: message, Err: err}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{Type: ErrorTypeValidation, Message: message}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string) *AppError {
	return &AppError{Type: ErrorTypeUnauthorized, Message: message}
}

// NewForbiddenError creates a new forbidden error
func NewForbiddenError(message string) *AppError {
	return &AppError{Type: ErrorTypeForbidden, Message: message}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeInternal, Message: message, Err: err}
}

// TypeOf returns the ErrorType carried anywhere in err's chain, or "" when there is none.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

func IsNotFound(err error) bool           { return TypeOf(err) == ErrorTypeNotFound }
func IsDuplicateEmail(err error) bool     { return TypeOf(err) == ErrorTypeDuplicateEmail }
func IsBackendUnavailable(err error) bool { return TypeOf(err) == ErrorTypeBackendUnavailable }
func IsValidation(err error) bool         { return TypeOf(err) == ErrorTypeValidation }
func IsUnauthorized(err error) bool       { return TypeOf(err) == ErrorTypeUnauthorized }
func IsForbidden(err error) bool          { return TypeOf(err) == ErrorTypeForbidden }
