package payments

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"

	"insightdesk/internal/config"
)

// PaymentStatusPaid is Stripe's payment_status for a settled session.
const PaymentStatusPaid = string(stripe.CheckoutSessionPaymentStatusPaid)

// Gateway creates checkout sessions and confirms their payment.
type Gateway interface {
	CreateSession(ctx context.Context, transactionID, successURL, cancelURL string) (*CheckoutSession, error)
	Confirm(ctx context.Context, sessionID, transactionID string) (*Confirmation, error)
}

// CheckoutSession is the redirect target for a new payment.
type CheckoutSession struct {
	ID  string `json:"sessionId"`
	URL string `json:"checkoutUrl"`
}

// Confirmation is the outcome of checking a session.
type Confirmation struct {
	Paid          bool   `json:"paid"`
	TransactionID string `json:"transactionId"`
	SessionID     string `json:"sessionId"`
	PaymentStatus string `json:"paymentStatus"`
}

// StripeClient drives Stripe Checkout through the stripe-go session client.
type StripeClient struct {
	sessions    session.Client
	amountCents int64
	currency    string
	productName string
	logger      *slog.Logger
}

// NewStripeClient returns ErrNotConfigured when cfg carries no secret key.
// httpClient may be nil.
func NewStripeClient(cfg config.PaymentsConfig, logger *slog.Logger, httpClient *http.Client) (*StripeClient, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	if logger == nil {
		logger = slog.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	apiBase := strings.TrimRight(cfg.APIBase, "/")
	if apiBase == "" {
		apiBase = stripe.APIURL
	}

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient:        httpClient,
		URL:               stripe.String(apiBase),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})

	return &StripeClient{
		sessions:    session.Client{B: backend, Key: cfg.SecretKey},
		amountCents: cfg.AmountCents,
		currency:    cfg.Currency,
		productName: cfg.ProductName,
		logger:      logger.With(slog.String("component", "stripe_gateway")),
	}, nil
}

// CreateSession opens a one-item card checkout tagged with the transaction id.
func (c *StripeClient) CreateSession(ctx context.Context, transactionID, successURL, cancelURL string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(c.currency),
				UnitAmount: stripe.Int64(c.amountCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(c.productName),
				},
			},
		}},
		Metadata:   map[string]string{"transactionId": transactionID},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	params.Context = ctx

	start := time.Now()
	s, err := c.sessions.New(params)
	if err != nil {
		return nil, c.gatewayError(ctx, "create_session", err, time.Since(start))
	}

	c.logger.InfoContext(ctx, "checkout session created",
		slog.String("transaction_id", transactionID),
		slog.String("session_id", s.ID),
	)
	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// Confirm retrieves the session. It is paid only when Stripe reports
// payment_status "paid" and the session metadata names the same transaction.
func (c *StripeClient) Confirm(ctx context.Context, sessionID, transactionID string) (*Confirmation, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	start := time.Now()
	s, err := c.sessions.Get(sessionID, params)
	if err != nil {
		return nil, c.gatewayError(ctx, "confirm_session", err, time.Since(start))
	}

	status := string(s.PaymentStatus)
	if status == "" {
		status = string(stripe.CheckoutSessionPaymentStatusUnpaid)
	}
	paid := status == PaymentStatusPaid && s.Metadata["transactionId"] == transactionID

	c.logger.InfoContext(ctx, "checkout session confirmed",
		slog.String("transaction_id", transactionID),
		slog.String("session_id", sessionID),
		slog.String("payment_status", status),
		slog.Bool("paid", paid),
	)
	return &Confirmation{
		Paid:          paid,
		TransactionID: transactionID,
		SessionID:     sessionID,
		PaymentStatus: status,
	}, nil
}

// gatewayError wraps an SDK failure. API errors keep Stripe's status code
// and message.
func (c *StripeClient) gatewayError(ctx context.Context, op string, err error, elapsed time.Duration) error {
	gwErr := &GatewayError{Op: op, Err: err}

	var apiErr *stripe.Error
	if errors.As(err, &apiErr) {
		gwErr.StatusCode = apiErr.HTTPStatusCode
		gwErr.Message = apiErr.Msg
		c.logger.WarnContext(ctx, "stripe returned error status",
			slog.String("op", op),
			slog.Int("status_code", apiErr.HTTPStatusCode),
			slog.String("error_type", string(apiErr.Type)),
		)
		return gwErr
	}

	c.logger.ErrorContext(ctx, "stripe request failed",
		slog.String("op", op),
		slog.String("error", err.Error()),
		slog.Duration("duration", elapsed),
	)
	return gwErr
}
