package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDomainError(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeConfiguration, "rule file is broken", baseErr)

	assert.Equal(t, ErrorTypeConfiguration, domainErr.Type)
	assert.Equal(t, "rule file is broken", domainErr.Message)
	assert.Equal(t, baseErr, domainErr.Err)
	assert.NotNil(t, domainErr.Details)
}

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *DomainError
		wantMsg string
	}{
		{
			name: "error with wrapped error",
			err: &DomainError{
				Type:    ErrorTypeConfiguration,
				Message: "rule 3 is invalid",
				Err:     errors.New("missing sign"),
			},
			wantMsg: "configuration: rule 3 is invalid (missing sign)",
		},
		{
			name: "error without wrapped error",
			err: &DomainError{
				Type:    ErrorTypeDenied,
				Message: "container name denied",
				Err:     nil,
			},
			wantMsg: "denied: container name denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeInternal, "internal error", baseErr)

	assert.Equal(t, baseErr, errors.Unwrap(domainErr))
	assert.True(t, errors.Is(domainErr, baseErr))
}

func TestDomainError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{
			name:   "same error type",
			err:    NewDomainError(ErrorTypeConfiguration, "bad pattern", nil),
			target: ErrInvalidHostRule,
			want:   true,
		},
		{
			name:   "different error type",
			err:    NewDomainError(ErrorTypeDenied, "refused", nil),
			target: ErrInvalidHostRule,
			want:   false,
		},
		{
			name:   "non-domain target",
			err:    NewDomainError(ErrorTypeDenied, "refused", nil),
			target: errors.New("plain"),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestDomainError_WithDetail(t *testing.T) {
	err := NewDomainError(ErrorTypeDenied, "refused", nil).
		WithDetail("rule", 2).
		WithDetail("check", "container_name")

	assert.Equal(t, 2, err.Details["rule"])
	assert.Equal(t, "container_name", err.Details["check"])
	assert.Equal(t, err.Details, GetErrorDetails(err))
}

func TestErrorTypeHelpers(t *testing.T) {
	tests := []struct {
		err  error
		pred func(error) bool
		want bool
	}{
		{ErrNoConfiguration, IsConfigurationError, true},
		{ErrInvalidHostRule, IsConfigurationError, true},
		{ErrNoMatchingRule, IsDeniedError, true},
		{ErrDenied, IsDeniedError, true},
		{ErrInvalidRequest, IsInvalidRequestError, true},
		{ErrUnauthorized, IsUnauthorizedError, true},
		{ErrInvalidToken, IsUnauthorizedError, true},
		{ErrInternal, IsInternalError, true},
		{ErrDenied, IsConfigurationError, false},
		{errors.New("plain"), IsDeniedError, false},
		{nil, IsConfigurationError, false},
	}

	for i, tt := range tests {
		assert.Equal(t, tt.want, tt.pred(tt.err), "case %d: %v", i, tt.err)
	}
}

func TestErrorTypeHelpersSeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("loading rules: %w", ErrInvalidHostRule)
	assert.True(t, IsConfigurationError(wrapped))
	assert.Equal(t, ErrorTypeConfiguration, GetErrorType(wrapped))
	assert.Equal(t, ErrorType(""), GetErrorType(errors.New("plain")))
}

func TestWrapHelpers(t *testing.T) {
	inner := errors.New("disk gone")

	cfg := WrapConfiguration("cannot read rules", inner)
	assert.True(t, IsConfigurationError(cfg))
	assert.True(t, errors.Is(cfg, inner))

	internal := WrapInternal("unexpected", inner)
	assert.True(t, IsInternalError(internal))

	custom := WrapError(ErrorTypeValidation, "bad field", inner)
	assert.True(t, IsValidationError(custom))
}
