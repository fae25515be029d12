package response

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/gatherly/gatherly-server/internal/errors"
	"github.com/gatherly/gatherly-server/internal/store"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	JSON(w, http.StatusOK, map[string]string{"name": "Test"}, logger)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	body := decode(t, w)
	assert.Equal(t, float64(EnvelopeVersion), body["v"])
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]any{"name": "Test"}, body["data"])
	assert.NotContains(t, body, "error")
}

func TestJSON_ErrorStatusIsNotSuccess(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusNotFound, map[string]string{"message": "test"}, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}

func TestStatusCodeBoundary(t *testing.T) {
	tests := []struct {
		status  int
		success bool
	}{
		{http.StatusOK, true},
		{http.StatusCreated, true},
		{399, true},
		{http.StatusBadRequest, false},
		{http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		JSON(w, tt.status, nil, nil)
		assert.Equal(t, tt.success, decode(t, w)["success"], "status %d", tt.status)
	}
}

func TestHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(http.ResponseWriter)
		status int
	}{
		{"created", func(w http.ResponseWriter) { Created(w, "x", nil) }, http.StatusCreated},
		{"success", func(w http.ResponseWriter) { Success(w, "x", nil) }, http.StatusOK},
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "bad", nil) }, http.StatusBadRequest},
		{"unauthorized", func(w http.ResponseWriter) { Unauthorized(w, "who", nil) }, http.StatusUnauthorized},
		{"too many", func(w http.ResponseWriter) { TooManyRequests(w, "slow", nil) }, http.StatusTooManyRequests},
		{"internal", func(w http.ResponseWriter) { InternalError(w, "oops", nil) }, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestHandleError_DomainError(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, domainerrors.FieldTaken("subdomain"), nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "This subdomain is already taken", body["error"])
	assert.Equal(t, "FIELD_TAKEN", body["code"])
	assert.Equal(t, map[string]any{"field": "subdomain"}, body["details"])
}

func TestHandleError_WrappedDomainError(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, errors.Join(errors.New("context"), domainerrors.Forbidden("Not authorized")), nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Not authorized", decode(t, w)["error"])
}

func TestHandleError_StoreError(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, store.ErrNotFound, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleError_Unknown(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, errors.New("disk on fire"), slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decode(t, w)["error"])
}
