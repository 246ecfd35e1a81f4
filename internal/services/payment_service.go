package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"insightdesk/internal/infrastructure"
	"insightdesk/internal/payments"
	"insightdesk/internal/transactions"
)

// PaymentService drives the checkout flow and opens a transaction record
// once a payment is confirmed.
type PaymentService struct {
	gateway           payments.Gateway
	txlog             transactions.Log
	storageConfigured bool
	notify            statusNotifier
	metrics           *infrastructure.InsightMetrics
	now               func() time.Time
	logger            *slog.Logger
}

// NewPaymentService creates a PaymentService. A nil gateway means Stripe is
// not configured and every payment call fails with payments.ErrNotConfigured.
func NewPaymentService(gateway payments.Gateway, txlog transactions.Log, storageConfigured bool, hub WebSocketHub, metrics *infrastructure.InsightMetrics, logger *slog.Logger) *PaymentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentService{
		gateway:           gateway,
		txlog:             txlog,
		storageConfigured: storageConfigured,
		notify:            statusNotifier{hub: hub},
		metrics:           metrics,
		now:               time.Now,
		logger:            logger.With(slog.String("component", "payment_service")),
	}
}

// Configured reports whether a payment gateway is available.
func (s *PaymentService) Configured() bool {
	return s.gateway != nil
}

// NewTransactionID issues a fresh TX-<unix millis> identifier.
func (s *PaymentService) NewTransactionID() string {
	return transactions.NewID(s.now())
}

// CreateCheckout starts a checkout session. No transaction record is
// written until the payment is confirmed.
func (s *PaymentService) CreateCheckout(ctx context.Context, transactionID, successURL, cancelURL string) (*payments.CheckoutSession, error) {
	if s.gateway == nil {
		return nil, payments.ErrNotConfigured
	}

	session, err := s.gateway.CreateSession(ctx, transactionID, successURL, cancelURL)
	if err != nil {
		s.logger.ErrorContext(ctx, "checkout session failed",
			slog.String("transaction_id", transactionID),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	s.logger.InfoContext(ctx, "checkout session created",
		slog.String("transaction_id", transactionID),
		slog.String("session_id", session.ID))
	return session, nil
}

// ConfirmSession checks a checkout session. When it is paid and the
// transaction has no record yet, a paid record is created.
func (s *PaymentService) ConfirmSession(ctx context.Context, sessionID, transactionID string) (*payments.Confirmation, error) {
	if s.gateway == nil {
		return nil, payments.ErrNotConfigured
	}

	confirmation, err := s.gateway.Confirm(ctx, sessionID, transactionID)
	if err != nil {
		s.logger.ErrorContext(ctx, "payment confirmation failed",
			slog.String("transaction_id", transactionID),
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to confirm payment session: %w", err)
	}
	s.metrics.RecordPayment(ctx, confirmation.Paid)

	if !confirmation.Paid {
		s.logger.InfoContext(ctx, "payment not completed",
			slog.String("transaction_id", transactionID),
			slog.String("payment_status", confirmation.PaymentStatus))
		return confirmation, nil
	}

	if err := s.openRecord(ctx, transactionID); err != nil {
		return nil, err
	}
	return confirmation, nil
}

func (s *PaymentService) openRecord(ctx context.Context, transactionID string) error {
	_, err := s.txlog.Get(ctx, transactionID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, transactions.ErrNotFound) {
		return fmt.Errorf("failed to load transaction %s: %w", transactionID, err)
	}

	record := transactions.NewPaidRecord(transactionID, s.now(), s.storageConfigured)
	if err := s.txlog.Create(ctx, record); err != nil {
		if errors.Is(err, transactions.ErrAlreadyExists) {
			return nil
		}
		s.metrics.RecordTransaction(ctx, "create", "error")
		return fmt.Errorf("failed to record transaction %s: %w", transactionID, err)
	}

	s.metrics.RecordTransaction(ctx, "create", string(record.Status))
	s.logger.InfoContext(ctx, "transaction recorded",
		slog.String("transaction_id", transactionID),
		slog.String("storage_status", record.StorageStatus))
	s.notify.transaction(EventTransactionPaid, record.ID, string(record.Status), record.StorageStatus)
	return nil
}
