package errors

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

const (
	maxCapturedBody = 64 << 10
	maxLoggedBody   = 500
)

// redactedFields are replaced before a request body reaches the logs.
var redactedFields = map[string]bool{
	"password":       true,
	"token":          true,
	"secret":         true,
	"sessionId":      true,
	"session_id":     true,
	"successUrl":     true,
	"cancelUrl":      true,
	"serviceRoleKey": true,
	"secretKey":      true,
}

// FailedRequestLogger logs the redacted JSON body of requests that end with
// a 4xx or 5xx status. Successful requests and non-JSON bodies are left to
// the access log.
type FailedRequestLogger struct {
	logger *slog.Logger
}

// NewFailedRequestLogger creates the middleware.
func NewFailedRequestLogger(logger *slog.Logger) *FailedRequestLogger {
	return &FailedRequestLogger{
		logger: logger.With(slog.String("component", "failed_request_logger")),
	}
}

// Handler returns the middleware handler function
func (m *FailedRequestLogger) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil && r.ContentLength > 0 && r.ContentLength < maxCapturedBody &&
			strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status < http.StatusBadRequest || len(body) == 0 {
			return
		}

		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logged := redactBody(body)
		if len(logged) > maxLoggedBody {
			logged = logged[:maxLoggedBody] + "..."
		}
		m.logger.LogAttrs(r.Context(), level, "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("request_body", logged))
	})
}

// redactBody masks sensitive top-level fields of a JSON object. Anything
// that is not a JSON object is returned unchanged.
func redactBody(body []byte) string {
	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return string(body)
	}
	for field := range data {
		if redactedFields[field] {
			data[field] = "[REDACTED]"
		}
	}
	sanitized, _ := json.Marshal(data)
	return string(sanitized)
}
