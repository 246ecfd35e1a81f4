package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	err := New(http.StatusBadRequest, "INVALID_REQUEST", "transactionId is required.")
	assert.Equal(t, "transactionId is required.", err.Error())

	var target *APIError
	wrapped := fmt.Errorf("confirm: %w", err)
	require.True(t, errors.As(wrapped, &target))
	assert.Equal(t, http.StatusBadRequest, target.StatusCode)
}

func TestErrValidationUsesMessage(t *testing.T) {
	err := ErrValidation("sessionId", "sessionId and transactionId are required.")

	assert.Equal(t, "sessionId and transactionId are required.", err.Message)
	assert.Equal(t, "VALIDATION_FAILED", err.ErrorCode)
	details, ok := err.Details.(ValidationError)
	require.True(t, ok)
	assert.Equal(t, "sessionId", details.Field)
}

func TestHelperConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *APIError
		status int
		code   string
	}{
		{"not configured", NotConfiguredError("Stripe is not configured."), http.StatusServiceUnavailable, "NOT_CONFIGURED"},
		{"invalid request", InvalidRequestWithError(errors.New("unexpected EOF")), http.StatusBadRequest, "INVALID_REQUEST"},
		{"validation", NewValidationError("bad"), http.StatusBadRequest, "VALIDATION_FAILED"},
		{"field list", NewValidationErrors([]ValidationError{{Field: "fileName", Message: "required"}}), http.StatusBadRequest, "VALIDATION_FAILED"},
		{"too large", ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.StatusCode)
			assert.Equal(t, tt.code, tt.err.ErrorCode)
		})
	}
}

func TestAppError(t *testing.T) {
	cause := errors.New("zip: not a valid zip file")
	err := NewParsingError("The uploaded file could not be read as a spreadsheet.", cause).
		WithContext("file_name", "sales.xlsx")

	assert.Equal(t, "[PARSING] The uploaded file could not be read as a spreadsheet.: zip: not a valid zip file", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "sales.xlsx", err.Context["file_name"])

	assert.Equal(t, "[PARSING] sheet is empty", NewAppError(ErrTypeParsing, "sheet is empty", nil).Error())
}

func TestProblemDetailsMarshal(t *testing.T) {
	pd := NewProblemDetails(http.StatusBadGateway, TypeStorage, "Storage Failed", "Unable to reach artifact storage.", "/api/upload").
		WithExtension("trace_id", "abc").
		WithExtension("status", 999)

	raw, err := json.Marshal(pd)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, TypeStorage, got["type"])
	assert.Equal(t, float64(http.StatusBadGateway), got["status"], "standard members win over extensions")
	assert.Equal(t, "abc", got["trace_id"])
	assert.Equal(t, "/api/upload", got["instance"])
}
