package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validatedConfig struct {
	Name  string   `validate:"required"`
	Hosts []string `validate:"required,min=1"`
	Mode  string   `validate:"omitempty,oneof=json text"`
}

func TestValidateStructValid(t *testing.T) {
	err := ValidateStruct(&validatedConfig{
		Name:  "gateway",
		Hosts: []string{"+.*"},
		Mode:  "json",
	})
	assert.NoError(t, err)
}

func TestValidateStructMissingRequired(t *testing.T) {
	err := ValidateStruct(&validatedConfig{})
	require.Error(t, err)
	require.True(t, IsValidationError(err))

	fields := GetValidationFields(err)
	assert.Equal(t, "is required", fields["validatedConfig.Name"])
	assert.Equal(t, "is required", fields["validatedConfig.Hosts"])
}

func TestValidateStructMinEntries(t *testing.T) {
	err := ValidateStruct(&validatedConfig{Name: "gateway", Hosts: []string{}})
	require.Error(t, err)

	fields := GetValidationFields(err)
	assert.Contains(t, fields["validatedConfig.Hosts"], "at least 1")
}

func TestValidateStructOneOf(t *testing.T) {
	err := ValidateStruct(&validatedConfig{
		Name:  "gateway",
		Hosts: []string{"+.*"},
		Mode:  "xml",
	})
	require.Error(t, err)

	fields := GetValidationFields(err)
	assert.Contains(t, fields["validatedConfig.Mode"], "must be one of")
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Message: "Validation failed"}
	assert.Equal(t, "Validation failed", err.Error())

	err.Fields = map[string]string{"Name": "is required"}
	assert.Contains(t, err.Error(), "Name: is required")
}

func TestValidationHelpersOnOtherErrors(t *testing.T) {
	plain := errors.New("plain")
	assert.False(t, IsValidationError(plain))
	assert.Nil(t, GetValidationFields(plain))
}
