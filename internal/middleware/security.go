package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"insightdesk/internal/infrastructure"
)

// Authenticator checks a username and password pair.
type Authenticator interface {
	Configured() bool
	Authenticate(username, password string) error
}

type ctxKey string

// UserKey is the context key holding the authenticated Basic-auth user.
const UserKey ctxKey = "user"

// BasicAuth guards routes with HTTP Basic credentials. Unconfigured
// credentials answer 503 so the route is never left open by accident.
func BasicAuth(logger *slog.Logger, auth Authenticator, realm string) func(next http.Handler) http.Handler {
	challenge := fmt.Sprintf("Basic realm=%q", realm)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if !auth.Configured() {
				problem := ProblemFromStatus(http.StatusServiceUnavailable,
					"History credentials are not configured.", infrastructure.GetTraceID(ctx))
				_ = problem.Render(w, r)
				return
			}

			username, password, ok := r.BasicAuth()
			err := errMissingCredentials
			if ok {
				err = auth.Authenticate(username, password)
			}
			if err == nil {
				logger.DebugContext(ctx, "basic auth accepted",
					"user_name", username,
					"path", r.URL.Path,
				)
				next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, UserKey, username)))
				return
			}

			logger.WarnContext(ctx, "authentication failed",
				"error", err.Error(),
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)

			w.Header().Set("WWW-Authenticate", challenge)
			problem := ProblemFromStatus(http.StatusUnauthorized, "Unauthorized", infrastructure.GetTraceID(ctx))
			_ = problem.Render(w, r)
		})
	}
}

var errMissingCredentials = errors.New("missing basic auth credentials")

// UserFromContext returns the Basic-auth user, if any.
func UserFromContext(ctx context.Context) string {
	user, _ := ctx.Value(UserKey).(string)
	return user
}

// SecureHeaders provides configurable security headers
type SecureHeaders struct {
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool

	ContentSecurityPolicy string
	XFrameOptions         string
	XContentTypeOptions   string
	ReferrerPolicy        string
	PermissionsPolicy     string

	// DevMode relaxes the default CSP
	DevMode bool
}

// DefaultSecureHeaders returns secure headers with default settings
func DefaultSecureHeaders() *SecureHeaders {
	return &SecureHeaders{
		HSTSMaxAge:            63072000, // 2 years
		HSTSIncludeSubdomains: true,
		XFrameOptions:         "DENY",
		XContentTypeOptions:   "nosniff",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}
}

// Handler returns the middleware handler
func (sh *SecureHeaders) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip security headers for WebSocket upgrades
		if r.Header.Get("Upgrade") == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		if sh.HSTSMaxAge > 0 && r.TLS != nil {
			hsts := fmt.Sprintf("max-age=%d", sh.HSTSMaxAge)
			if sh.HSTSIncludeSubdomains {
				hsts += "; includeSubDomains"
			}
			w.Header().Set("Strict-Transport-Security", hsts)
		}

		if sh.ContentSecurityPolicy != "" {
			w.Header().Set("Content-Security-Policy", sh.ContentSecurityPolicy)
		} else {
			w.Header().Set("Content-Security-Policy", sh.defaultCSP())
		}

		if sh.XFrameOptions != "" {
			w.Header().Set("X-Frame-Options", sh.XFrameOptions)
		}
		if sh.XContentTypeOptions != "" {
			w.Header().Set("X-Content-Type-Options", sh.XContentTypeOptions)
		}
		if sh.ReferrerPolicy != "" {
			w.Header().Set("Referrer-Policy", sh.ReferrerPolicy)
		}

		if sh.PermissionsPolicy != "" {
			w.Header().Set("Permissions-Policy", sh.PermissionsPolicy)
		} else {
			w.Header().Set("Permissions-Policy", "camera=(), geolocation=(), microphone=(), usb=()")
		}

		next.ServeHTTP(w, r)
	})
}

// defaultCSP allows the inline styles of the rendered dashboard page.
func (sh *SecureHeaders) defaultCSP() string {
	if sh.DevMode {
		return "default-src 'self'; style-src 'self' 'unsafe-inline' *; img-src * data: blob:; connect-src *"
	}
	return strings.Join([]string{
		"default-src 'self'",
		"style-src 'self' 'unsafe-inline'",
		"img-src 'self' data:",
		"connect-src 'self' ws: wss:",
		"frame-ancestors 'none'",
		"base-uri 'self'",
	}, "; ")
}

// AuditLog records who touched a protected route and how it ended.
func AuditLog(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			start := time.Now()

			ww := &auditResponseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(ww, r)

			logger.InfoContext(ctx, "audit log",
				"event_type", "history_access",
				"user_name", UserFromContext(ctx),
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.Query().Encode(),
				"remote_addr", r.RemoteAddr,
				"status", ww.statusCode,
				"duration", time.Since(start).String(),
			)
		})
	}
}

// auditResponseWriter captures the response status code
type auditResponseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (w *auditResponseWriter) WriteHeader(code int) {
	if !w.written {
		w.statusCode = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *auditResponseWriter) Write(b []byte) (int, error) {
	w.written = true
	return w.ResponseWriter.Write(b)
}
