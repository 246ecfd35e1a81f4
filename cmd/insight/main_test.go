package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"insightdesk/internal/exporter"
	"insightdesk/internal/shared/testutil"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeSales(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "q1 sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(testutil.SalesCSV), 0o644))
	return path
}

func TestAnalyzeCommand(t *testing.T) {
	path := writeSales(t)

	t.Run("text", func(t *testing.T) {
		out, err := runCLI(t, "analyze", path)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "q1 sales.csv\n"))
		assert.Contains(t, out, "rows: 6")
		assert.Contains(t, out, "- Executive summary")
	})

	t.Run("json", func(t *testing.T) {
		out, err := runCLI(t, "analyze", "--json", path)
		require.NoError(t, err)

		var report struct {
			SourceName string   `json:"sourceName"`
			Narrative  []string `json:"narrative"`
			Overview   struct {
				Rows    int `json:"rows"`
				Columns int `json:"columns"`
			} `json:"overview"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		assert.Equal(t, "q1 sales.csv", report.SourceName)
		assert.Equal(t, 6, report.Overview.Rows)
		assert.Equal(t, 6, report.Overview.Columns)
		assert.NotEmpty(t, report.Narrative)
	})

	t.Run("html dashboard", func(t *testing.T) {
		htmlPath := filepath.Join(t.TempDir(), "dashboard.html")
		_, err := runCLI(t, "analyze", "--html", htmlPath, path)
		require.NoError(t, err)

		html, err := os.ReadFile(htmlPath)
		require.NoError(t, err)
		assert.Contains(t, string(html), "<html")
	})
}

func TestAnalyzeCommandErrors(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hello"), 0o644))
	blank := filepath.Join(dir, "blank.csv")
	require.NoError(t, os.WriteFile(blank, []byte(testutil.BlankCSV), 0o644))

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "no file", args: []string{"analyze"}, wantErr: "accepts 1 arg"},
		{name: "unsupported type", args: []string{"analyze", txt}, wantErr: "unsupported"},
		{name: "missing file", args: []string{"analyze", filepath.Join(dir, "nope.csv")}, wantErr: "does not exist"},
		{name: "no usable rows", args: []string{"analyze", blank}},
		{name: "export of unsupported type", args: []string{"export", "--out", dir, txt}, wantErr: "unsupported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			require.Error(t, err)
			if tt.wantErr != "" {
				assert.Contains(t, strings.ToLower(err.Error()), strings.ToLower(tt.wantErr))
			}
		})
	}
}

func TestExportCommand(t *testing.T) {
	path := writeSales(t)
	outDir := filepath.Join(t.TempDir(), "out")

	out, err := runCLI(t, "export", "--out", outDir, path)
	require.NoError(t, err)
	assert.Contains(t, out, "q1 sales_cleaned.csv")
	assert.Contains(t, out, "q1 sales_cleaned.xlsx")

	csvData, err := os.ReadFile(filepath.Join(outDir, "q1 sales_cleaned.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(csvData), "Date,Region,Sales,Cost,Units,Status"))

	f, err := excelize.OpenFile(filepath.Join(outDir, "q1 sales_cleaned.xlsx"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(exporter.CleanedSheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 7)
}

func TestDemoCommand(t *testing.T) {
	out, err := runCLI(t, "demo")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, demoSourceName))
	assert.Contains(t, out, "Executive summary")
}
