package http

import (
	"context"

	"insightdesk/internal/payments"
	"insightdesk/internal/services"
	"insightdesk/internal/storage"
	"insightdesk/internal/transactions"
)

// HealthService defines the interface for health checks
type HealthService interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}

// PaymentService defines the interface for the checkout flow
type PaymentService interface {
	CreateCheckout(ctx context.Context, transactionID, successURL, cancelURL string) (*payments.CheckoutSession, error)
	ConfirmSession(ctx context.Context, sessionID, transactionID string) (*payments.Confirmation, error)
}

// StorageService defines the interface for signed uploads
type StorageService interface {
	CreateUpload(ctx context.Context, transactionID, fileName, contentType string) (*storage.SignedUpload, error)
}

// AnalysisService defines the interface for analysis runs and their sessions
type AnalysisService interface {
	Analyze(ctx context.Context, req services.AnalysisRequest) (*services.AnalysisResult, error)
	Demo(ctx context.Context) (*services.AnalysisResult, error)
	Session(ctx context.Context, id string) (*services.AnalysisResult, error)
	Artifact(ctx context.Context, sessionID string, kind services.ArtifactKind) (*services.Artifact, error)
}

// HistoryService defines the interface for the transaction history
type HistoryService interface {
	List(ctx context.Context, filter transactions.Filter) ([]*transactions.Record, error)
	Export(ctx context.Context) (*services.HistoryExport, error)
}
