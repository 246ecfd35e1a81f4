package tablesource

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"insightdesk/internal/insights"
)

// Format is a supported input format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

// ContentType returns the MIME type used when storing files of this format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatXLS:
		return "application/vnd.ms-excel"
	default:
		return "application/octet-stream"
	}
}

// DetectFormat picks the format from the file extension, case-insensitively.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	default:
		return "", &UnsupportedFileTypeError{Name: name}
	}
}

// Source reads an uploaded file into raw rows.
type Source interface {
	Read(ctx context.Context, name string, r io.Reader) ([]insights.RawRow, error)
}

// Reader is the default Source. It dispatches on the file extension.
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a Reader.
func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{logger: logger.With(slog.String("component", "tablesource"))}
}

// Read parses r according to the extension of name.
func (s *Reader) Read(ctx context.Context, name string, r io.Reader) ([]insights.RawRow, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	var grid [][]string
	switch format {
	case FormatCSV:
		grid, err = readCSV(ctx, data)
	case FormatXLSX:
		grid, err = readXLSX(ctx, bytes.NewReader(data))
	case FormatXLS:
		grid, err = readXLS(ctx, bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s file: %w", format, err)
	}

	rows := toRawRows(grid)
	s.logger.DebugContext(ctx, "table source parsed",
		slog.String("file_name", name),
		slog.String("format", string(format)),
		slog.Int("rows", len(rows)))
	return rows, nil
}

// ReadFile opens path and reads it with s.
func (s *Reader) ReadFile(ctx context.Context, path string) ([]insights.RawRow, error) {
	if _, err := DetectFormat(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return s.Read(ctx, filepath.Base(path), f)
}

// toRawRows keys every data row by the header row. Cells beyond the header
// get synthetic keys and cells missing at the end of a row become nil.
func toRawRows(grid [][]string) []insights.RawRow {
	if len(grid) == 0 {
		return nil
	}
	width := 0
	for _, rec := range grid {
		if len(rec) > width {
			width = len(rec)
		}
	}
	keys := headerKeys(grid[0], width)

	out := make([]insights.RawRow, 0, len(grid)-1)
	for _, rec := range grid[1:] {
		row := make(insights.RawRow, width)
		for i, key := range keys {
			var v any
			if i < len(rec) {
				v = rec[i]
			}
			row[i] = insights.Field{Key: key, Value: v}
		}
		out = append(out, row)
	}
	return out
}

// headerKeys names every column. Blank headers become column_<n> and
// repeats get the first free _<k> suffix, so no two keys are equal even when
// a suffixed name also appears as a real header.
func headerKeys(header []string, width int) []string {
	keys := make([]string, width)
	used := make(map[string]bool, width)
	next := make(map[string]int, width)
	for i := range keys {
		key := ""
		if i < len(header) {
			key = strings.TrimSpace(header[i])
		}
		if key == "" {
			key = fmt.Sprintf("column_%d", i+1)
		}
		if used[key] {
			base, n := key, next[key]
			if n < 2 {
				n = 2
			}
			for used[fmt.Sprintf("%s_%d", base, n)] {
				n++
			}
			key = fmt.Sprintf("%s_%d", base, n)
			next[base] = n + 1
		}
		used[key] = true
		keys[i] = key
	}
	return keys
}
