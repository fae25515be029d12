package validation_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/gatherly/gatherly-server/internal/errors"
	"github.com/gatherly/gatherly-server/internal/validation"
)

type createCommunityBody struct {
	Name        string `json:"name" validate:"required,max=32"`
	Subdomain   string `json:"subdomain" validate:"required,max=32"`
	Description string `json:"description,omitempty" validate:"max=140"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	err := v.Validate(createCommunityBody{Name: "Test", Subdomain: "test"})
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		body      createCommunityBody
		wantField string
	}{
		{
			name:      "missing name",
			body:      createCommunityBody{Subdomain: "test"},
			wantField: "name",
		},
		{
			name:      "subdomain too long",
			body:      createCommunityBody{Name: "Test", Subdomain: strings.Repeat("a", 33)},
			wantField: "subdomain",
		},
		{
			name:      "description too long",
			body:      createCommunityBody{Name: "Test", Subdomain: "test", Description: strings.Repeat("x", 141)},
			wantField: "description",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.body)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())
			assert.True(t, strings.HasPrefix(domainErr.Message, tt.wantField+" "))

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Contains(t, details, tt.wantField)
		})
	}
}

func TestValidator_JSONFieldNames(t *testing.T) {
	v := validation.New()

	err := v.Validate(createCommunityBody{Name: "Test"})
	require.Error(t, err)

	assert.Contains(t, err.Error(), "subdomain")
	assert.NotContains(t, err.Error(), "Subdomain")
}

func TestValidator_Field(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name    string
		field   string
		value   string
		tag     string
		wantErr string
	}{
		{"within limit", "name", "Test", "max=32", ""},
		{"too long", "name", strings.Repeat("n", 33), "max=32", "name must not exceed 32 characters"},
		{"required empty", "slug", "", "required,max=128", "slug is required"},
		{"font allowed", "font", "font-lora", "oneof=font-cal font-lora font-work", ""},
		{"font rejected", "font", "comic-sans", "oneof=font-cal font-lora font-work", "font must be one of: font-cal font-lora font-work"},
		{"no rules", "description", strings.Repeat("d", 5000), "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Field(tt.field, tt.value, tt.tag)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, domainerrors.ErrValidation))
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}
