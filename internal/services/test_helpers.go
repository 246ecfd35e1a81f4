package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"insightdesk/internal/payments"
	"insightdesk/internal/storage"
)

// MockWebSocketHub is a mock for WebSocketHub interface
type MockWebSocketHub struct {
	mock.Mock
}

func (m *MockWebSocketHub) Broadcast(messageType string, data interface{}) {
	m.Called(messageType, data)
}

// MockArtifactStore is a mock for storage.ArtifactStore
type MockArtifactStore struct {
	mock.Mock
}

func (m *MockArtifactStore) Store(ctx context.Context, transactionID string, blob []byte, fileName, contentType string) (string, error) {
	args := m.Called(ctx, transactionID, blob, fileName, contentType)
	return args.String(0), args.Error(1)
}

// MockGateway is a mock for payments.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateSession(ctx context.Context, transactionID, successURL, cancelURL string) (*payments.CheckoutSession, error) {
	args := m.Called(ctx, transactionID, successURL, cancelURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.CheckoutSession), args.Error(1)
}

func (m *MockGateway) Confirm(ctx context.Context, sessionID, transactionID string) (*payments.Confirmation, error) {
	args := m.Called(ctx, sessionID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.Confirmation), args.Error(1)
}

// MockUploadSigner is a mock for UploadSigner
type MockUploadSigner struct {
	mock.Mock
}

func (m *MockUploadSigner) CreateUpload(ctx context.Context, transactionID, fileName, contentType string) (*storage.SignedUpload, error) {
	args := m.Called(ctx, transactionID, fileName, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.SignedUpload), args.Error(1)
}

// MockHealthChecker is a mock for HealthChecker
type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
