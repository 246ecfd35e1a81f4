package services

import (
	"context"
	"fmt"
	"log/slog"

	"insightdesk/internal/storage"
)

// UploadSigner reserves signed upload URLs.
type UploadSigner interface {
	CreateUpload(ctx context.Context, transactionID, fileName, contentType string) (*storage.SignedUpload, error)
}

// StorageService hands out signed upload slots for browser-side uploads.
type StorageService struct {
	signer UploadSigner
	logger *slog.Logger
}

// NewStorageService creates a StorageService. A nil signer means storage is
// not configured.
func NewStorageService(signer UploadSigner, logger *slog.Logger) *StorageService {
	if logger == nil {
		logger = slog.Default()
	}
	return &StorageService{
		signer: signer,
		logger: logger.With(slog.String("component", "storage_service")),
	}
}

// Configured reports whether storage is available.
func (s *StorageService) Configured() bool {
	return s.signer != nil
}

// CreateUpload reserves a signed upload URL under the transaction's folder.
func (s *StorageService) CreateUpload(ctx context.Context, transactionID, fileName, contentType string) (*storage.SignedUpload, error) {
	if s.signer == nil {
		return nil, storage.ErrNotConfigured
	}

	upload, err := s.signer.CreateUpload(ctx, transactionID, fileName, contentType)
	if err != nil {
		s.logger.ErrorContext(ctx, "signed upload failed",
			slog.String("transaction_id", transactionID),
			slog.String("file_name", fileName),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create signed upload: %w", err)
	}

	s.logger.InfoContext(ctx, "signed upload created",
		slog.String("transaction_id", transactionID),
		slog.String("object_path", upload.ObjectPath))
	return upload, nil
}
