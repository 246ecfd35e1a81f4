package transactions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id                TEXT PRIMARY KEY,
	paid_at           TEXT NOT NULL,
	uploaded_at       TEXT,
	file_name         TEXT NOT NULL DEFAULT '',
	status            TEXT NOT NULL,
	storage_status    TEXT NOT NULL,
	original_url      TEXT NOT NULL DEFAULT '',
	cleaned_csv_url   TEXT NOT NULL DEFAULT '',
	cleaned_excel_url TEXT NOT NULL DEFAULT '',
	dashboard_pdf_url TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_transactions_paid_at ON transactions(paid_at);
CREATE INDEX IF NOT EXISTS idx_transactions_status ON transactions(status);
`

const selectColumns = `id, paid_at, uploaded_at, file_name, status, storage_status,
	original_url, cleaned_csv_url, cleaned_excel_url, dashboard_pdf_url`

// SQLiteLog persists records in a SQLite database.
type SQLiteLog struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) the database at dsn and applies the
// schema.
func OpenSQLite(ctx context.Context, dsn string, logger *slog.Logger) (*SQLiteLog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps :memory: databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	logger.Info("transaction log opened", slog.String("component", "sqlite_log"), slog.String("dsn", dsn))
	return &SQLiteLog{db: db, logger: logger.With(slog.String("component", "sqlite_log"))}, nil
}

// Create inserts a new record.
func (l *SQLiteLog) Create(ctx context.Context, r *Record) error {
	res, err := l.db.ExecContext(ctx, `INSERT INTO transactions (`+selectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`, recordArgs(r)...)
	if err != nil {
		return fmt.Errorf("insert transaction %s: %w", r.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", r.ID, ErrAlreadyExists)
	}
	return nil
}

// Get loads one record.
func (l *SQLiteLog) Get(ctx context.Context, id string) (*Record, error) {
	row := l.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM transactions WHERE id = ?`, id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load transaction %s: %w", id, err)
	}
	return r, nil
}

// Update overwrites every mutable column of an existing record.
func (l *SQLiteLog) Update(ctx context.Context, r *Record) error {
	args := recordArgs(r)
	res, err := l.db.ExecContext(ctx, `UPDATE transactions SET
		paid_at = ?, uploaded_at = ?, file_name = ?, status = ?, storage_status = ?,
		original_url = ?, cleaned_csv_url = ?, cleaned_excel_url = ?, dashboard_pdf_url = ?
		WHERE id = ?`, append(args[1:], args[0])...)
	if err != nil {
		return fmt.Errorf("update transaction %s: %w", r.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction %s: %w", r.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", r.ID, ErrNotFound)
	}
	return nil
}

// List returns matching records, newest first.
func (l *SQLiteLog) List(ctx context.Context, filter Filter) ([]*Record, error) {
	query := `SELECT ` + selectColumns + ` FROM transactions WHERE 1=1`
	var args []interface{}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if !filter.Since.IsZero() {
		query += ` AND paid_at >= ?`
		args = append(args, formatTime(filter.Since))
	}
	query += ` ORDER BY paid_at DESC, id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var result []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// Ping checks the database connection.
func (l *SQLiteLog) Ping(ctx context.Context) error {
	return l.db.PingContext(ctx)
}

// Close closes the database.
func (l *SQLiteLog) Close() error {
	return l.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (*Record, error) {
	var (
		r        Record
		paidAt   string
		uploaded sql.NullString
		status   string
	)
	if err := s.Scan(&r.ID, &paidAt, &uploaded, &r.FileName, &status, &r.StorageStatus,
		&r.Artifacts.OriginalURL, &r.Artifacts.CleanedCSVURL, &r.Artifacts.CleanedExcelURL, &r.Artifacts.DashboardPDFURL); err != nil {
		return nil, err
	}
	r.Status = Status(status)

	t, err := time.Parse(time.RFC3339Nano, paidAt)
	if err != nil {
		return nil, fmt.Errorf("bad paid_at %q: %w", paidAt, err)
	}
	r.PaidAt = t
	if uploaded.Valid && uploaded.String != "" {
		u, err := time.Parse(time.RFC3339Nano, uploaded.String)
		if err != nil {
			return nil, fmt.Errorf("bad uploaded_at %q: %w", uploaded.String, err)
		}
		r.UploadedAt = &u
	}
	return &r, nil
}

func recordArgs(r *Record) []interface{} {
	var uploaded interface{}
	if r.UploadedAt != nil {
		uploaded = formatTime(*r.UploadedAt)
	}
	return []interface{}{
		r.ID,
		formatTime(r.PaidAt),
		uploaded,
		r.FileName,
		string(r.Status),
		r.StorageStatus,
		r.Artifacts.OriginalURL,
		r.Artifacts.CleanedCSVURL,
		r.Artifacts.CleanedExcelURL,
		r.Artifacts.DashboardPDFURL,
	}
}

// formatTime uses a fixed-width layout so text ordering matches time ordering.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}
