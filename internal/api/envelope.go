package api

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/gatherly/gatherly-server/internal/errors"
	"github.com/gatherly/gatherly-server/internal/http/response"
)

// EnvelopeVersion is the version of the response envelope shape.
const EnvelopeVersion = response.EnvelopeVersion

// APIEnvelope wraps successful responses and plain errors.
type APIEnvelope struct { //nolint:revive // API prefix is intentional for clarity
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// APIErrorEnvelope wraps coded errors. Error repeats Message so form
// clients can read a single field.
type APIErrorEnvelope struct { //nolint:revive // API prefix is intentional for clarity
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps every huma response body in the envelope.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	if err, ok := v.(error); ok {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Code != "" {
			return APIErrorEnvelope{
				Version: EnvelopeVersion,
				Error:   apiErr.Message,
				Code:    apiErr.Code,
				Message: apiErr.Message,
				Details: apiErr.Details,
			}, nil
		}

		var domainErr *domainerrors.Error
		if errors.As(err, &domainErr) {
			return APIErrorEnvelope{
				Version: EnvelopeVersion,
				Error:   domainErr.Message,
				Code:    string(domainErr.Code),
				Message: domainErr.Message,
				Details: domainErr.Details,
			}, nil
		}

		return APIEnvelope{
			Version: EnvelopeVersion,
			Error:   err.Error(),
		}, nil
	}

	return APIEnvelope{
		Version: EnvelopeVersion,
		Success: true,
		Data:    v,
	}, nil
}
