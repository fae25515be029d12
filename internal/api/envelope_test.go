package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/gatherly/gatherly-server/internal/errors"
	"github.com/gatherly/gatherly-server/internal/store"
)

func TestEnvelopeTransformer_AlwaysIncludesVersion(t *testing.T) {
	tests := []struct {
		name   string
		status string
		input  any
	}{
		{"success response", "200", map[string]string{"key": "value"}},
		{"created response", "201", map[string]string{"id": "123"}},
		{"no content response", "204", nil},
		{"bad request error", "400", errors.New("invalid input")},
		{"domain error", "409", domainerrors.FieldTaken("subdomain")},
		{"api error", "404", &APIError{Code: "NOT_FOUND", Message: "Community not found"}},
		{"internal server error", "500", errors.New("internal error")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := EnvelopeTransformer(nil, tt.status, tt.input)
			require.NoError(t, err)

			jsonBytes, err := json.Marshal(result)
			require.NoError(t, err)

			var envelope map[string]any
			require.NoError(t, json.Unmarshal(jsonBytes, &envelope))

			require.Contains(t, envelope, "v", "Envelope must contain version field 'v'")
			assert.Equal(t, float64(EnvelopeVersion), envelope["v"])
		})
	}
}

func TestEnvelopeTransformer_SuccessResponse(t *testing.T) {
	data := map[string]string{"name": "Test Community"}

	result, err := EnvelopeTransformer(nil, "200", data)
	require.NoError(t, err)

	envelope, ok := result.(APIEnvelope)
	require.True(t, ok, "Expected APIEnvelope type")

	assert.Equal(t, EnvelopeVersion, envelope.Version)
	assert.True(t, envelope.Success)
	assert.Equal(t, data, envelope.Data)
	assert.Empty(t, envelope.Error)
}

func TestEnvelopeTransformer_PlainError(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "400", errors.New("validation failed"))
	require.NoError(t, err)

	envelope, ok := result.(APIEnvelope)
	require.True(t, ok, "Expected APIEnvelope type")

	assert.False(t, envelope.Success)
	assert.Nil(t, envelope.Data)
	assert.Equal(t, "validation failed", envelope.Error)
}

func TestEnvelopeTransformer_DomainError(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "400", domainerrors.ReservedDomain("gatherly.app"))
	require.NoError(t, err)

	envelope, ok := result.(APIErrorEnvelope)
	require.True(t, ok, "Expected APIErrorEnvelope type")

	assert.False(t, envelope.Success)
	assert.Equal(t, "RESERVED_DOMAIN", envelope.Code)
	assert.Equal(t, "Cannot use gatherly.app subdomain as your custom domain", envelope.Message)
	assert.Equal(t, envelope.Message, envelope.Error)
}

func TestEnvelopeTransformer_ErrorWithDetails(t *testing.T) {
	apiErr := &APIError{
		Code:    "FIELD_TAKEN",
		Message: "This slug is already in use",
		Details: []string{"slug"},
	}

	result, err := EnvelopeTransformer(nil, "409", apiErr)
	require.NoError(t, err)

	envelope, ok := result.(APIErrorEnvelope)
	require.True(t, ok, "Expected APIErrorEnvelope type")

	assert.Equal(t, EnvelopeVersion, envelope.Version)
	assert.Equal(t, "FIELD_TAKEN", envelope.Code)
	assert.Equal(t, "This slug is already in use", envelope.Message)
	assert.Equal(t, []string{"slug"}, envelope.Details)
}

func TestRegisterErrorHandler(t *testing.T) {
	RegisterErrorHandler()

	tests := []struct {
		name   string
		status int
		errs   []error
		want   int
		code   string
	}{
		{"domain error wins over status", http.StatusInternalServerError, []error{domainerrors.Forbidden("Not authorized")}, http.StatusForbidden, "FORBIDDEN"},
		{"store not found", http.StatusInternalServerError, []error{store.ErrNotFound}, http.StatusNotFound, "NOT_FOUND"},
		{"schema failure", http.StatusUnprocessableEntity, []error{errors.New("expected required property subdomain")}, http.StatusUnprocessableEntity, "VALIDATION"},
		{"bare status", http.StatusConflict, nil, http.StatusConflict, "FIELD_TAKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := huma.NewError(tt.status, "message", tt.errs...)

			assert.Equal(t, tt.want, err.GetStatus())
			apiErr, ok := err.(*APIError)
			require.True(t, ok)
			assert.Equal(t, tt.code, apiErr.Code)
		})
	}
}
