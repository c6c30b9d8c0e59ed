package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeConfiguration  ErrorType = "configuration"
	ErrorTypeInvalidRequest ErrorType = "invalid_request"
	ErrorTypeDenied         ErrorType = "denied"
	ErrorTypeUnauthorized   ErrorType = "unauthorized"
	ErrorTypeValidation     ErrorType = "validation"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeInternal       ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// Domain error variables

var (
	// Configuration errors: structurally invalid policy data. Fatal to the
	// resolution attempt in progress, escalated to the operator.
	ErrInvalidHostRule = NewDomainError(ErrorTypeConfiguration, "host rule entry is missing its sign", nil)
	ErrUnknownCheck    = NewDomainError(ErrorTypeConfiguration, "check name is not registered", nil)
	ErrInvalidRules    = NewDomainError(ErrorTypeConfiguration, "invalid rule configuration", nil)
	ErrNoConfiguration = NewDomainError(ErrorTypeConfiguration, "no rule configuration loaded", nil)

	// Denial errors: expected, control-flow-bearing rejections.
	ErrNoMatchingRule = NewDomainError(ErrorTypeDenied, "no policy rule matches the request host", nil)
	ErrDenied         = NewDomainError(ErrorTypeDenied, "request denied by policy", nil)

	// Invalid-request errors: the request lacks information a check needs.
	ErrInvalidRequest = NewDomainError(ErrorTypeInvalidRequest, "request is ambiguous or malformed", nil)

	// Admin API errors.
	ErrUnauthorized = NewDomainError(ErrorTypeUnauthorized, "unauthorized", nil)
	ErrInvalidToken = NewDomainError(ErrorTypeUnauthorized, "invalid authentication token", nil)
	ErrInternal     = NewDomainError(ErrorTypeInternal, "internal server error", nil)
)

// Error type checking helper functions

// IsConfigurationError checks if an error is a configuration error
func IsConfigurationError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeConfiguration
	}
	return false
}

// IsInvalidRequestError checks if an error is an invalid-request error
func IsInvalidRequestError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeInvalidRequest
	}
	return false
}

// IsDeniedError checks if an error is a policy denial
func IsDeniedError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeDenied
	}
	return false
}

// IsUnauthorizedError checks if an error is an unauthorized error
func IsUnauthorizedError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeUnauthorized
	}
	return false
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeValidation
	}
	return false
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeNotFound
	}
	return false
}

// IsInternalError checks if an error is an internal error
func IsInternalError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeInternal
	}
	return false
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapError wraps an error with additional context
func WrapError(errType ErrorType, message string, err error) error {
	return NewDomainError(errType, message, err)
}

// WrapConfiguration wraps an error as a configuration error
func WrapConfiguration(message string, err error) error {
	return NewDomainError(ErrorTypeConfiguration, message, err)
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}
