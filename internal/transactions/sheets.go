package transactions

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"insightdesk/internal/config"
)

// SheetsMirror decorates a Log and appends a row to a Google Sheet after
// every successful Create or Update. The sheet is an append-only audit
// trail; mirror failures are logged and never fail the write.
type SheetsMirror struct {
	Log
	service       *sheets.Service
	spreadsheetID string
	writeRange    string
	logger        *slog.Logger
}

// NewSheetsMirror wraps next. Extra client options (endpoint, HTTP client)
// are appended after the credentials option derived from cfg.
func NewSheetsMirror(ctx context.Context, next Log, cfg config.SheetsConfig, logger *slog.Logger, opts ...option.ClientOption) (*SheetsMirror, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("sheets mirror requires a spreadsheet id")
	}
	if logger == nil {
		logger = slog.Default()
	}

	var clientOpts []option.ClientOption
	if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	clientOpts = append(clientOpts, opts...)

	service, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	writeRange := cfg.Range
	if writeRange == "" {
		writeRange = "History!A:J"
	}

	return &SheetsMirror{
		Log:           next,
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		writeRange:    writeRange,
		logger:        logger.With(slog.String("component", "sheets_mirror")),
	}, nil
}

// Create writes through and mirrors the new record.
func (m *SheetsMirror) Create(ctx context.Context, r *Record) error {
	if err := m.Log.Create(ctx, r); err != nil {
		return err
	}
	m.mirror(ctx, "create", r)
	return nil
}

// Update writes through and mirrors the new state.
func (m *SheetsMirror) Update(ctx context.Context, r *Record) error {
	if err := m.Log.Update(ctx, r); err != nil {
		return err
	}
	m.mirror(ctx, "update", r)
	return nil
}

func (m *SheetsMirror) mirror(ctx context.Context, op string, r *Record) {
	vr := &sheets.ValueRange{Values: [][]interface{}{r.HistoryRow()}}
	_, err := m.service.Spreadsheets.Values.Append(m.spreadsheetID, m.writeRange, vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		m.logger.WarnContext(ctx, "failed to mirror transaction",
			slog.String("op", op),
			slog.String("transaction_id", r.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	m.logger.DebugContext(ctx, "transaction mirrored",
		slog.String("op", op),
		slog.String("transaction_id", r.ID),
	)
}
