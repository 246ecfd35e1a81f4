package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"insightdesk/internal/payments"
	"insightdesk/internal/services"
	"insightdesk/internal/transactions"
)

func newPaymentRouter(t *testing.T, gateway payments.Gateway) (http.Handler, *transactions.MemoryLog) {
	t.Helper()
	deps := newTestDeps(t)
	log := transactions.NewMemoryLog()
	svc := services.NewPaymentService(gateway, log, true, nil, nil, deps.logger)
	return NewPaymentHandler(svc, deps.validator, deps.logger, deps.errorHandler).Routes(), log
}

func TestCreateCheckoutSession(t *testing.T) {
	const validBody = `{"transactionId":"TX-1","successUrl":"https://app.example/ok","cancelUrl":"https://app.example/cancel"}`

	tests := []struct {
		name       string
		body       string
		setup      func(g *services.MockGateway)
		wantStatus int
		wantError  string
	}{
		{
			name: "creates a session",
			body: validBody,
			setup: func(g *services.MockGateway) {
				g.On("CreateSession", mock.Anything, "TX-1", "https://app.example/ok", "https://app.example/cancel").
					Return(&payments.CheckoutSession{ID: "cs_1", URL: "https://checkout.stripe.com/c/cs_1"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing fields",
			body:       `{"transactionId":"TX-1"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "transactionId, successUrl, and cancelUrl are required.",
		},
		{
			name:       "empty body",
			body:       "",
			wantStatus: http.StatusBadRequest,
			wantError:  "transactionId, successUrl, and cancelUrl are required.",
		},
		{
			name:       "malformed json",
			body:       `{"transactionId":`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Request body contains invalid JSON",
		},
		{
			name: "gateway failure hides upstream detail",
			body: validBody,
			setup: func(g *services.MockGateway) {
				g.On("CreateSession", mock.Anything, "TX-1", mock.Anything, mock.Anything).
					Return(nil, &payments.GatewayError{Op: "create session", StatusCode: 401, Message: "Invalid API Key provided: sk_test_***"})
			},
			wantStatus: http.StatusBadGateway,
			wantError:  "Unable to create checkout session.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := &services.MockGateway{}
			if tt.setup != nil {
				tt.setup(gateway)
			}
			router, _ := newPaymentRouter(t, gateway)

			req := httptest.NewRequest(http.MethodPost, "/create-checkout-session", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeBody(t, rec)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
				assert.NotContains(t, rec.Body.String(), "sk_test")
				return
			}
			assert.Equal(t, "cs_1", body["sessionId"])
			assert.Equal(t, "https://checkout.stripe.com/c/cs_1", body["checkoutUrl"])
			gateway.AssertExpectations(t)
		})
	}
}

func TestPaymentsNotConfigured(t *testing.T) {
	router, _ := newPaymentRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/create-checkout-session",
		strings.NewReader(`{"transactionId":"TX-1","successUrl":"https://a.example/ok","cancelUrl":"https://a.example/no"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Stripe is not configured.", decodeBody(t, rec)["error"])

	req = httptest.NewRequest(http.MethodGet, "/confirm-session?sessionId=cs_1&transactionId=TX-1", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Stripe is not configured.", decodeBody(t, rec)["error"])
}

func TestConfirmSession(t *testing.T) {
	gateway := &services.MockGateway{}
	gateway.On("Confirm", mock.Anything, "cs_paid", "TX-9").
		Return(&payments.Confirmation{Paid: true, TransactionID: "TX-9", SessionID: "cs_paid", PaymentStatus: "paid"}, nil)
	gateway.On("Confirm", mock.Anything, "cs_open", "TX-10").
		Return(&payments.Confirmation{Paid: false, TransactionID: "TX-10", SessionID: "cs_open", PaymentStatus: "unpaid"}, nil)
	gateway.On("Confirm", mock.Anything, "cs_broken", "TX-11").
		Return(nil, &payments.GatewayError{Op: "retrieve session", StatusCode: 404, Message: "No such checkout.session"})

	router, log := newPaymentRouter(t, gateway)

	t.Run("paid session opens a record", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/confirm-session?sessionId=cs_paid&transactionId=TX-9", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["paid"])
		assert.Equal(t, "TX-9", body["transactionId"])
		assert.Equal(t, "cs_paid", body["sessionId"])
		assert.Equal(t, "paid", body["paymentStatus"])

		record, err := log.Get(context.Background(), "TX-9")
		require.NoError(t, err)
		assert.Equal(t, transactions.StatusPaid, record.Status)
		assert.Equal(t, transactions.StoragePending, record.StorageStatus)
	})

	t.Run("unpaid session writes nothing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/confirm-session?sessionId=cs_open&transactionId=TX-10", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, false, decodeBody(t, rec)["paid"])
		_, err := log.Get(context.Background(), "TX-10")
		assert.ErrorIs(t, err, transactions.ErrNotFound)
	})

	t.Run("missing parameters", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/confirm-session?sessionId=cs_paid", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "sessionId and transactionId are required.", decodeBody(t, rec)["error"])
	})

	t.Run("gateway failure", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/confirm-session?sessionId=cs_broken&transactionId=TX-11", nil))

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Unable to confirm payment session.", body["error"])
		assert.Equal(t, "UPSTREAM_FAILED", body["error_code"])
	})
}
