package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "insightdesk/internal/errors"
	"insightdesk/internal/middleware"
	"insightdesk/internal/payments"
)

// CheckoutRequest starts a Stripe checkout for a transaction.
type CheckoutRequest struct {
	TransactionID string `json:"transactionId" validate:"required"`
	SuccessURL    string `json:"successUrl" validate:"required,url"`
	CancelURL     string `json:"cancelUrl" validate:"required,url"`
}

// PaymentHandler handles the checkout endpoints
type PaymentHandler struct {
	service      PaymentService
	validator    *middleware.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(service PaymentService, validator *middleware.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *PaymentHandler {
	return &PaymentHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("handler", "payments")),
		errorHandler: errorHandler,
	}
}

// Routes returns the payment routes
func (h *PaymentHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.With(h.validator.ValidateRequest).Post("/create-checkout-session", h.CreateCheckoutSession)
	r.Get("/confirm-session", h.ConfirmSession)

	return r
}

// CreateCheckoutSession handles POST /payments/create-checkout-session
func (h *PaymentHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	req.TransactionID = strings.TrimSpace(req.TransactionID)

	if err := h.validator.ValidateStructWithMessage(&req, "transactionId, successUrl, and cancelUrl are required."); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	session, err := h.service.CreateCheckout(r.Context(), req.TransactionID, req.SuccessURL, req.CancelURL)
	if err != nil {
		h.handleGatewayError(w, r, err, "Unable to create checkout session.")
		return
	}

	render.JSON(w, r, session)
}

// ConfirmSession handles GET /payments/confirm-session
func (h *PaymentHandler) ConfirmSession(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("sessionId"))
	transactionID := strings.TrimSpace(r.URL.Query().Get("transactionId"))
	if sessionID == "" || transactionID == "" {
		h.errorHandler.HandleError(w, r, apierrors.NewValidationError("sessionId and transactionId are required."))
		return
	}

	confirmation, err := h.service.ConfirmSession(r.Context(), sessionID, transactionID)
	if err != nil {
		h.handleGatewayError(w, r, err, "Unable to confirm payment session.")
		return
	}

	render.JSON(w, r, confirmation)
}

// handleGatewayError reports Stripe failures with a fixed message and leaves
// everything else to the ErrorHandler.
func (h *PaymentHandler) handleGatewayError(w http.ResponseWriter, r *http.Request, err error, message string) {
	if errors.Is(err, payments.ErrNotConfigured) {
		h.errorHandler.HandleError(w, r, apierrors.NotConfiguredError("Stripe is not configured."))
		return
	}
	if payments.IsGatewayError(err) {
		h.logger.ErrorContext(r.Context(), message, slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apierrors.New(http.StatusBadGateway, "UPSTREAM_FAILED", message))
		return
	}
	h.errorHandler.HandleError(w, r, serviceError(err))
}
