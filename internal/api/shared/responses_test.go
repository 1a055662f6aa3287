package shared

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithJSON(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "/cards", nil)
	recorder := httptest.NewRecorder()

	RespondWithJSON(recorder, req, http.StatusOK, map[string]string{"status": "active"})

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&body))
	assert.Equal(t, "active", body["status"])
}

func TestRespondWithError(t *testing.T) {
	t.Parallel()

	t.Run("includes trace ID when present", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/cards", nil)
		req = req.WithContext(SetTraceID(req.Context()))
		recorder := httptest.NewRecorder()

		RespondWithError(recorder, req, http.StatusNotFound, "Card not found")

		assert.Equal(t, http.StatusNotFound, recorder.Code)

		var resp ErrorResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, "Card not found", resp.Error)
		assert.NotEmpty(t, resp.TraceID)
	})

	t.Run("omits trace ID when absent", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/cards", nil)
		recorder := httptest.NewRecorder()

		RespondWithError(recorder, req, http.StatusBadRequest, "Invalid request data")

		var raw map[string]any
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&raw))
		assert.Equal(t, "Invalid request data", raw["error"])
		_, hasTrace := raw["trace_id"]
		assert.False(t, hasTrace)
	})

	t.Run("status code is not serialized", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/cards", nil)
		recorder := httptest.NewRecorder()

		RespondWithError(recorder, req, http.StatusConflict, "Email already exists")

		var raw map[string]any
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&raw))
		_, hasCode := raw["code"]
		assert.False(t, hasCode)
	})
}

func TestRespondWithErrorAndLog(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("POST", "/cards/transfer", nil)
	req = req.WithContext(SetTraceID(req.Context()))
	recorder := httptest.NewRecorder()

	internal := errors.New("pq: deadlock detected on cards row 42")
	RespondWithErrorAndLog(recorder, req, http.StatusInternalServerError, "An unexpected error occurred", internal)

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)

	// Only the sanitized message reaches the client.
	body := recorder.Body.String()
	assert.Contains(t, body, "An unexpected error occurred")
	assert.NotContains(t, body, "deadlock")
	assert.NotContains(t, body, "pq:")
}
