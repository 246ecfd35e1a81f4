package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "insightdesk/internal/errors"
	"insightdesk/internal/shared/testutil"
)

type uploadRequest struct {
	TransactionID string `json:"transactionId" validate:"required"`
	FileName      string `json:"fileName" validate:"required,filename"`
	ContentType   string `json:"contentType" validate:"required"`
}

func newValidation(t *testing.T) *ValidationMiddleware {
	logger, _ := testutil.NewTestLogger(t)
	return NewValidationMiddleware(logger, apierrors.NewErrorHandler(logger, false))
}

func TestValidateStructWithMessage(t *testing.T) {
	v := newValidation(t)
	msg := "transactionId, fileName, and contentType are required."

	assert.NoError(t, v.ValidateStructWithMessage(uploadRequest{"TX-1", "sales.csv", "text/csv"}, msg))

	err := v.ValidateStructWithMessage(uploadRequest{FileName: "../etc/passwd"}, msg)
	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, msg, apiErr.Message)

	details, ok := apiErr.Details.(apierrors.ValidationErrors)
	require.True(t, ok)
	fields := make(map[string]string)
	for _, fe := range details.Errors {
		fields[fe.Field] = fe.Message
	}
	assert.Equal(t, "transactionId is required", fields["transactionId"])
	assert.Equal(t, "fileName must be a valid filename", fields["fileName"])
	assert.Equal(t, "contentType is required", fields["contentType"])
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantStatus  int
		wantCode    string
	}{
		{name: "valid json", contentType: "application/json", body: `{"a":1}`, wantStatus: http.StatusOK},
		{name: "json with charset", contentType: "application/json; charset=utf-8", body: `{"a":1}`, wantStatus: http.StatusOK},
		{name: "empty body", wantStatus: http.StatusOK},
		{name: "invalid json", contentType: "application/json", body: "{not json", wantStatus: http.StatusBadRequest, wantCode: "INVALID_JSON"},
		{name: "form body", contentType: "application/x-www-form-urlencoded", body: "a=1", wantStatus: http.StatusUnsupportedMediaType, wantCode: "UNSUPPORTED_MEDIA_TYPE"},
		{name: "missing content type", body: `{"a":1}`, wantStatus: http.StatusUnsupportedMediaType, wantCode: "UNSUPPORTED_MEDIA_TYPE"},
		{name: "too large", contentType: "application/json", body: `{"pad":"` + strings.Repeat("x", 64) + `"}`, wantStatus: http.StatusRequestEntityTooLarge, wantCode: "PAYLOAD_TOO_LARGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := newValidation(t).WithMaxBodySize(32).ValidateRequest(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				buf := new(strings.Builder)
				_, _ = io.Copy(buf, r.Body)
				seen = buf.String()
			}))

			req := httptest.NewRequest(http.MethodPost, "/payments/create-checkout-session", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode == "" {
				assert.Equal(t, tt.body, seen, "body is replayed to the handler")
				return
			}
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body["error_code"])
		})
	}
}

type historyParams struct {
	Limit  int    `json:"limit" validate:"min=1,max=1000"`
	Status string `json:"status" validate:"omitempty,oneof=paid completed failed"`
	Since  string `json:"since" validate:"omitempty,rfc3339"`
}

func TestValidateQueryStruct(t *testing.T) {
	v := newValidation(t)

	assert.NoError(t, v.ValidateStruct(&historyParams{Limit: 25, Status: "paid", Since: "2025-01-02T03:04:05Z"}))

	err := v.ValidateStruct(&historyParams{Limit: 0, Status: "refunded", Since: "yesterday"})
	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)

	details := apiErr.Details.(apierrors.ValidationErrors)
	fields := make(map[string]string)
	for _, fe := range details.Errors {
		fields[fe.Field] = fe.Message
	}
	assert.Equal(t, "limit must be at least 1", fields["limit"])
	assert.Equal(t, "status must be one of: paid, completed, failed", fields["status"])
	assert.Equal(t, "since must be an RFC 3339 timestamp", fields["since"])
}
