package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"insightdesk/internal/config"
	"insightdesk/internal/exporter"
	"insightdesk/internal/transactions"
)

// HistoryExport is a generated history workbook.
type HistoryExport struct {
	FileName string
	Data     []byte
	Rows     int
}

// HistoryService guards and serves the transaction history.
type HistoryService struct {
	creds    config.HistoryConfig
	txlog    transactions.Log
	workbook *exporter.WorkbookWriter
	now      func() time.Time
	logger   *slog.Logger
}

// NewHistoryService creates a HistoryService.
func NewHistoryService(creds config.HistoryConfig, txlog transactions.Log, workbook *exporter.WorkbookWriter, logger *slog.Logger) *HistoryService {
	if logger == nil {
		logger = slog.Default()
	}
	if workbook == nil {
		workbook = exporter.NewWorkbookWriter(logger)
	}
	return &HistoryService{
		creds:    creds,
		txlog:    txlog,
		workbook: workbook,
		now:      time.Now,
		logger:   logger.With(slog.String("component", "history_service")),
	}
}

// Configured reports whether history credentials are set.
func (s *HistoryService) Configured() bool {
	return s.creds.Enabled()
}

// Authenticate checks Basic-auth credentials. A configured bcrypt hash takes
// precedence over the plain password.
func (s *HistoryService) Authenticate(username, password string) error {
	if !s.creds.Enabled() {
		return ErrHistoryNotConfigured
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.creds.Username)) == 1

	var passOK bool
	if s.creds.PasswordHash != "" {
		passOK = bcrypt.CompareHashAndPassword([]byte(s.creds.PasswordHash), []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(s.creds.Password)) == 1
	}

	if !userOK || !passOK {
		return ErrInvalidCredentials
	}
	return nil
}

// List returns transactions newest first.
func (s *HistoryService) List(ctx context.Context, filter transactions.Filter) ([]*transactions.Record, error) {
	records, err := s.txlog.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return records, nil
}

// Export builds the history workbook.
func (s *HistoryService) Export(ctx context.Context) (*HistoryExport, error) {
	records, err := s.List(ctx, transactions.Filter{})
	if err != nil {
		return nil, err
	}

	rows := make([][]interface{}, len(records))
	for i, r := range records {
		rows[i] = r.HistoryRow()
	}

	data, err := s.workbook.Workbook(exporter.HistorySheetName, exporter.HistoryHeaders, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to build history workbook: %w", err)
	}

	s.logger.InfoContext(ctx, "history exported", slog.Int("rows", len(rows)))
	return &HistoryExport{
		FileName: exporter.HistoryFileName(s.now()),
		Data:     data,
		Rows:     len(rows),
	}, nil
}
