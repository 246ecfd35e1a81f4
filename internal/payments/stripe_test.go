package payments

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"insightdesk/internal/config"
)

func testPaymentsConfig(base string) config.PaymentsConfig {
	return config.PaymentsConfig{
		SecretKey:   "sk_test_123",
		APIBase:     base,
		AmountCents: 500,
		Currency:    "usd",
		ProductName: "Single Upload Analysis",
	}
}

func newTestStripe(t *testing.T, handler http.HandlerFunc) *StripeClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewStripeClient(testPaymentsConfig(server.URL), slog.New(slog.NewTextHandler(io.Discard, nil)), server.Client())
	require.NoError(t, err)
	return client
}

func TestNewStripeClientNotConfigured(t *testing.T) {
	_, err := NewStripeClient(config.PaymentsConfig{}, nil, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestCreateSession(t *testing.T) {
	client := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseForm())

		assert.Equal(t, "payment", r.PostForm.Get("mode"))
		assert.Equal(t, "card", r.PostForm.Get("payment_method_types[0]"))
		assert.Equal(t, "1", r.PostForm.Get("line_items[0][quantity]"))
		assert.Equal(t, "usd", r.PostForm.Get("line_items[0][price_data][currency]"))
		assert.Equal(t, "500", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
		assert.Equal(t, "Single Upload Analysis", r.PostForm.Get("line_items[0][price_data][product_data][name]"))
		assert.Equal(t, "TX-1", r.PostForm.Get("metadata[transactionId]"))
		assert.Equal(t, "https://app.example/ok", r.PostForm.Get("success_url"))
		assert.Equal(t, "https://app.example/cancel", r.PostForm.Get("cancel_url"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","url":"https://checkout.stripe.com/c/pay/cs_test_1"}`))
	})

	session, err := client.CreateSession(context.Background(), "TX-1", "https://app.example/ok", "https://app.example/cancel")
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", session.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", session.URL)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		txID       string
		wantPaid   bool
		wantStatus string
	}{
		{
			name:       "paid and matching",
			body:       `{"id":"cs_1","payment_status":"paid","metadata":{"transactionId":"TX-1"}}`,
			txID:       "TX-1",
			wantPaid:   true,
			wantStatus: "paid",
		},
		{
			name:       "paid for another transaction",
			body:       `{"id":"cs_1","payment_status":"paid","metadata":{"transactionId":"TX-2"}}`,
			txID:       "TX-1",
			wantPaid:   false,
			wantStatus: "paid",
		},
		{
			name:       "unpaid",
			body:       `{"id":"cs_1","payment_status":"unpaid","metadata":{"transactionId":"TX-1"}}`,
			txID:       "TX-1",
			wantPaid:   false,
			wantStatus: "unpaid",
		},
		{
			name:       "missing status defaults to unpaid",
			body:       `{"id":"cs_1"}`,
			txID:       "TX-1",
			wantPaid:   false,
			wantStatus: "unpaid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/v1/checkout/sessions/cs_1", r.URL.Path)
				_, _ = w.Write([]byte(tt.body))
			})

			got, err := client.Confirm(context.Background(), "cs_1", tt.txID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPaid, got.Paid)
			assert.Equal(t, tt.wantStatus, got.PaymentStatus)
			assert.Equal(t, "cs_1", got.SessionID)
			assert.Equal(t, tt.txID, got.TransactionID)
		})
	}
}

func TestGatewayErrors(t *testing.T) {
	client := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"message":"No such checkout.session: cs_missing","type":"invalid_request_error"}}`))
	})

	_, err := client.Confirm(context.Background(), "cs_missing", "TX-1")
	require.Error(t, err)
	assert.True(t, IsGatewayError(err))

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusNotFound, gwErr.StatusCode)
	assert.Equal(t, "No such checkout.session: cs_missing", gwErr.Message)
	assert.Contains(t, gwErr.Error(), "confirm_session returned 404")

	var apiErr *stripe.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, stripe.ErrorTypeInvalidRequest, apiErr.Type)

	t.Run("unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		client, err := NewStripeClient(testPaymentsConfig(server.URL), nil, server.Client())
		require.NoError(t, err)
		server.Close()

		_, err = client.CreateSession(context.Background(), "TX-1", "a", "b")
		require.ErrorAs(t, err, &gwErr)
		assert.Zero(t, gwErr.StatusCode)
		assert.Contains(t, gwErr.Error(), "create_session failed")
	})

	t.Run("malformed body", func(t *testing.T) {
		client := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		})
		_, err := client.CreateSession(context.Background(), "TX-1", "a", "b")
		assert.True(t, IsGatewayError(err))
	})
}
