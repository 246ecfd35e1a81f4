package exporter

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"insightdesk/internal/insights"
)

func readSheet(t *testing.T, data []byte) (string, [][]string) {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	require.Len(t, sheets, 1)
	rows, err := f.GetRows(sheets[0])
	require.NoError(t, err)
	return sheets[0], rows
}

func TestCleanedWorkbook(t *testing.T) {
	report, err := insights.Analyze(insights.DemoRows())
	require.NoError(t, err)

	data, err := NewWorkbookWriter(nil).CleanedWorkbook(report.Table)
	require.NoError(t, err)

	sheet, rows := readSheet(t, data)
	assert.Equal(t, CleanedSheetName, sheet)
	require.Len(t, rows, 7)
	assert.Equal(t, []string{"Date", "Region", "Sales", "Cost", "Units", "Status"}, rows[0])
	assert.Equal(t, "4580", rows[6][2])
	assert.Equal(t, "", rows[3][3])
}

func TestWorkbookHistorySheet(t *testing.T) {
	rows := [][]interface{}{
		{"TX-1", "completed", "stored", "2025-01-01T10:00:00Z", "2025-01-01T10:05:00Z", "a.csv", "u1", "u2", "u3", "u4"},
	}

	data, err := NewWorkbookWriter(nil).Workbook(HistorySheetName, HistoryHeaders, rows)
	require.NoError(t, err)

	sheet, got := readSheet(t, data)
	assert.Equal(t, "History", sheet)
	require.Len(t, got, 2)
	assert.Equal(t, HistoryHeaders, got[0])
	assert.Equal(t, "TX-1", got[1][0])
	assert.Equal(t, "u4", got[1][9])
}

func TestHistoryFileName(t *testing.T) {
	at := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, "insight_history_2025-03-04_05-06-07.xlsx", HistoryFileName(at))
}
