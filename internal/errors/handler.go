package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"insightdesk/internal/insights"
	"insightdesk/internal/payments"
	"insightdesk/internal/storage"
	"insightdesk/internal/tablesource"
	"insightdesk/internal/transactions"
)

// Problem types
const (
	TypeValidation      = "/errors/validation"
	TypeNotFound        = "/errors/not-found"
	TypeUnauthorized    = "/errors/unauthorized"
	TypeRateLimit       = "/errors/rate-limit"
	TypeInternal        = "/errors/internal"
	TypeServiceDown     = "/errors/service-unavailable"
	TypeTimeout         = "/errors/timeout"
	TypeConflict        = "/errors/conflict"
	TypePayloadTooLarge = "/errors/payload-too-large"

	TypeUnsupportedFile = "/errors/upload/unsupported-file-type"
	TypeEmptyInput      = "/errors/upload/empty-input"
	TypeParsing         = "/errors/upload/unreadable"
	TypePaymentRequired = "/errors/payment/required"
	TypePaymentGateway  = "/errors/payment/gateway"
	TypeStorage         = "/errors/storage/failed"
	TypeNotConfigured   = "/errors/not-configured"
)

// domainRule maps a class of domain error to a fixed problem.
type domainRule struct {
	match  func(error) bool
	status int
	typ    string
	title  string
	detail string
	code   string
}

func is(target error) func(error) bool {
	return func(err error) bool { return errors.Is(err, target) }
}

// domainRules is checked in order; the first match wins.
var domainRules = []domainRule{
	{
		match:  tablesource.IsUnsupportedFileType,
		status: http.StatusUnsupportedMediaType,
		typ:    TypeUnsupportedFile,
		title:  "Unsupported File Type",
		detail: "Unsupported file type. Upload CSV/XLS/XLSX.",
		code:   "UNSUPPORTED_FILE_TYPE",
	},
	{
		match:  insights.IsEmptyInput,
		status: http.StatusUnprocessableEntity,
		typ:    TypeEmptyInput,
		title:  "No Usable Rows",
		detail: "No usable rows found after cleaning.",
		code:   "EMPTY_INPUT",
	},
	{
		match:  is(payments.ErrNotConfigured),
		status: http.StatusServiceUnavailable,
		typ:    TypeNotConfigured,
		title:  "Service Unavailable",
		detail: "Stripe is not configured.",
		code:   "NOT_CONFIGURED",
	},
	{
		match:  is(storage.ErrNotConfigured),
		status: http.StatusServiceUnavailable,
		typ:    TypeNotConfigured,
		title:  "Service Unavailable",
		detail: "Storage is not configured.",
		code:   "NOT_CONFIGURED",
	},
	{
		match:  func(err error) bool { return storage.IsUnavailable(err) || storage.IsRejected(err) },
		status: http.StatusBadGateway,
		typ:    TypeStorage,
		title:  "Storage Failed",
		detail: "Unable to reach artifact storage.",
		code:   "STORAGE_FAILED",
	},
	{
		match:  payments.IsGatewayError,
		status: http.StatusBadGateway,
		typ:    TypePaymentGateway,
		title:  "Payment Gateway Failed",
		detail: "The payment provider could not complete the request.",
		code:   "UPSTREAM_FAILED",
	},
	{
		match:  is(transactions.ErrNotFound),
		status: http.StatusNotFound,
		typ:    TypeNotFound,
		title:  "Resource Not Found",
		detail: "Transaction not found.",
		code:   "NOT_FOUND",
	},
}

// apiErrorTypes maps APIError codes to problem types. Unlisted codes are
// reported as internal.
var apiErrorTypes = map[string]string{
	"VALIDATION_FAILED":      TypeValidation,
	"INVALID_REQUEST":        TypeValidation,
	"INVALID_JSON":           TypeValidation,
	"NOT_FOUND":              TypeNotFound,
	"UNAUTHORIZED":           TypeUnauthorized,
	"CONFLICT":               TypeConflict,
	"RATE_LIMIT_EXCEEDED":    TypeRateLimit,
	"NOT_CONFIGURED":         TypeServiceDown,
	"PAYMENT_REQUIRED":       TypePaymentRequired,
	"UNSUPPORTED_FILE_TYPE":  TypeUnsupportedFile,
	"UNSUPPORTED_MEDIA_TYPE": TypeUnsupportedFile,
	"PAYLOAD_TOO_LARGE":      TypePayloadTooLarge,
	"UPSTREAM_FAILED":        TypePaymentGateway,
}

// ErrorHandler renders errors as RFC 7807 problems and logs them.
type ErrorHandler struct {
	logger      *slog.Logger
	development bool
}

// NewErrorHandler creates a new error handler. In development mode the
// internal error text is included in responses under "cause".
func NewErrorHandler(logger *slog.Logger, development bool) *ErrorHandler {
	return &ErrorHandler{
		logger:      logger.With(slog.String("component", "error_handler")),
		development: development,
	}
}

// HandleError converts any error to RFC 7807 format and responds. The
// detail is repeated under "error" for clients reading the flat shape.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())

	problem := h.ErrorToProblem(err, r)
	problem.WithExtension("trace_id", reqID)
	if _, ok := problem.Extensions["error"]; !ok {
		problem.WithExtension("error", problem.Detail)
	}
	if h.development {
		problem.WithExtension("cause", err.Error())
	}

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.LogAttrs(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	render.Render(w, r, problem)
}

// ErrorToProblem converts an error to RFC 7807 Problem Details
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	path := r.URL.Path

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			path,
		)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErrorToProblem(apiErr, path)
	}

	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return NewProblemDetails(
			http.StatusRequestEntityTooLarge,
			TypePayloadTooLarge,
			"Payload Too Large",
			fmt.Sprintf("The upload exceeds the maximum allowed size of %d bytes", maxBytes.Limit),
			path,
		).WithExtension("error_code", "PAYLOAD_TOO_LARGE")
	}

	for _, rule := range domainRules {
		if rule.match(err) {
			return NewProblemDetails(rule.status, rule.typ, rule.title, rule.detail, path).
				WithExtension("error_code", rule.code)
		}
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErrorToProblem(appErr, path)
	}

	return NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred while processing your request",
		path,
	)
}

func apiErrorToProblem(apiErr *APIError, path string) *ProblemDetails {
	problemType, ok := apiErrorTypes[apiErr.ErrorCode]
	if !ok {
		problemType = TypeInternal
	}

	problem := NewProblemDetails(
		apiErr.StatusCode,
		problemType,
		http.StatusText(apiErr.StatusCode),
		apiErr.Message,
		path,
	).WithExtension("error_code", apiErr.ErrorCode)

	if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}
	return problem
}

// appErrorToProblem maps typed application errors by their category.
func appErrorToProblem(appErr *AppError, path string) *ProblemDetails {
	status, problemType := http.StatusInternalServerError, TypeInternal
	if appErr.Type == ErrTypeParsing {
		status, problemType = http.StatusBadRequest, TypeParsing
	}

	problem := NewProblemDetails(status, problemType, http.StatusText(status), appErr.Message, path).
		WithExtension("error_code", string(appErr.Type))
	if len(appErr.Context) > 0 {
		problem.WithExtension("context", appErr.Context)
	}
	return problem
}

// NotFound is the router's 404 handler.
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusNotFound,
		TypeNotFound,
		"Not Found",
		"The requested resource was not found",
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	render.Render(w, r, problem)
}

// MethodNotAllowed is the router's 405 handler.
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusMethodNotAllowed,
		TypeInternal,
		"Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method),
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	render.Render(w, r, problem)
}
