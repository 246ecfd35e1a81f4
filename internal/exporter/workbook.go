package exporter

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"insightdesk/internal/insights"
)

const (
	CleanedSheetName = "Cleaned Data"
	HistorySheetName = "History"
)

// HistoryHeaders is the column order of the history export.
var HistoryHeaders = []string{
	"transactionId", "status", "storageStatus", "paidAt", "uploadedAt", "fileName",
	"originalUrl", "cleanedCsvUrl", "cleanedExcelUrl", "dashboardPdfUrl",
}

// WorkbookWriter builds xlsx exports in memory.
type WorkbookWriter struct {
	logger *slog.Logger
}

// NewWorkbookWriter creates a WorkbookWriter.
func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{logger: logger.With(slog.String("component", "workbook_writer"))}
}

// CleanedWorkbook writes the table to a "Cleaned Data" sheet. Numbers stay
// numeric cells and nulls are left blank.
func (w *WorkbookWriter) CleanedWorkbook(t *insights.Table) ([]byte, error) {
	rows := make([][]interface{}, len(t.Rows))
	for i, row := range t.Rows {
		vals := make([]interface{}, len(row))
		for c, cell := range row {
			vals[c] = cell.Value()
		}
		rows[i] = vals
	}
	return w.Workbook(CleanedSheetName, t.Headers, rows)
}

// Workbook writes a single-sheet workbook with a bold header row.
func (w *WorkbookWriter) Workbook(sheet string, headers []string, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to open stream writer: %w", err)
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := sw.SetRow("A1", header, excelize.RowOpts{StyleID: bold}); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	w.logger.Debug("workbook built",
		slog.String("sheet", sheet),
		slog.Int("rows", len(rows)),
		slog.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

// HistoryFileName names a history export taken at t.
func HistoryFileName(t time.Time) string {
	return "insight_history_" + t.Format("2006-01-02_15-04-05") + ".xlsx"
}
