package http

import (
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	apierrors "insightdesk/internal/errors"
	"insightdesk/internal/middleware"
	"insightdesk/internal/shared/testutil"
)

type testDeps struct {
	logger       *slog.Logger
	logs         *testutil.BufferedSlogHandler
	errorHandler *apierrors.ErrorHandler
	validator    *middleware.ValidationMiddleware
}

func newTestDeps(t *testing.T) testDeps {
	t.Helper()
	logger, logs := testutil.NewTestLogger(t)
	eh := apierrors.NewErrorHandler(logger, false)
	return testDeps{
		logger:       logger,
		logs:         logs,
		errorHandler: eh,
		validator:    middleware.NewValidationMiddleware(logger, eh),
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}
