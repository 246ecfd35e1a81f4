package insights

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeDemo(t *testing.T) {
	report, err := Analyze(DemoRows())
	require.NoError(t, err)

	assert.Equal(t, 6, report.TotalRows)
	assert.Equal(t, 6, report.TotalCols)
	assert.InDelta(t, 94.444, report.QualityScore, 0.001)

	require.Len(t, report.Numeric, 3)
	assert.Equal(t, ColumnStats{Header: "Sales", Count: 5, Mean: 2055, Min: 1200, Max: 4580, StdDev: 1274.5}, report.Numeric[0])
	assert.Equal(t, "Cost", report.Numeric[1].Header)
	assert.Equal(t, "Units", report.Numeric[2].Header)
	assert.Equal(t, 1, report.Numeric[2].OutlierCount)

	require.Len(t, report.Categorical, 3)
	assert.Equal(t, []string{"Date", "Region", "Status"},
		[]string{report.Categorical[0].Header, report.Categorical[1].Header, report.Categorical[2].Header})

	require.NotNil(t, report.Trend)
	assert.Len(t, report.Trend.Points, 5)

	require.Len(t, report.Correlations, 3)
	assert.Equal(t, "Sales ↔ Units", report.Correlations[0].Label())
	assert.Equal(t, 0.998, report.Correlations[0].Coefficient)

	assert.Equal(t, Overview{
		Rows: 6, Columns: 6, MissingCells: 2, NumericColumns: 3,
		Outliers: 1, Correlations: 3, QualityScore: 94.4,
	}, report.Overview())
}

func TestAnalyzeEmptyInput(t *testing.T) {
	_, err := Analyze([]RawRow{{{Key: "A", Value: nil}, {Key: "B", Value: nil}}})
	assert.True(t, IsEmptyInput(err))
}

func TestAnalyzeConcurrentRuns(t *testing.T) {
	want, err := Analyze(DemoRows())
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*InsightReport, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Analyze(DemoRows())
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestReportJSON(t *testing.T) {
	report, err := Analyze(rows([]string{"Name", "Score"}, []any{"a", 1}, []any{nil, 2}))
	require.NoError(t, err)

	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"rows":[["a",1],[null,2]]`)
	assert.NotContains(t, string(data), `"trend"`)
}

func TestSessionArtifactNames(t *testing.T) {
	tests := []struct {
		source   string
		base     string
		original string
	}{
		{"Quarterly Sales.XLSX", "Quarterly Sales", "Quarterly Sales_original.XLSX"},
		{"uploads/data.v2.csv", "data.v2", "data.v2_original.csv"},
		{DemoSourceName, DemoSourceName, DemoSourceName + "_original"},
		{"", "dataset", "dataset_original"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			s := NewSession("id", "TX-1", tt.source, nil, time.Now())
			assert.Equal(t, tt.base, s.BaseName())
			assert.Equal(t, tt.original, s.OriginalName())
			assert.Equal(t, tt.base+"_cleaned.csv", s.CleanedCSVName())
			assert.Equal(t, tt.base+"_cleaned.xlsx", s.CleanedExcelName())
			assert.Equal(t, tt.base+"_dashboard.pdf", s.DashboardPDFName())
		})
	}
}
