package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trendOf(t *testing.T, raw []RawRow) *TrendSeries {
	t.Helper()
	table := mustTable(t, raw)
	return DetectTrend(table, AnalyzeNumeric(table))
}

func TestDetectTrendMonthlySums(t *testing.T) {
	trend := trendOf(t, rows([]string{"Date", "Sales"},
		[]any{"2025-01-01", 100},
		[]any{"2025-02-01", 150},
	))

	require.NotNil(t, trend)
	assert.Equal(t, "Date", trend.DateHeader)
	assert.Equal(t, "Sales", trend.MetricHeader)
	assert.Equal(t, []TrendPoint{{Period: "2025-01", Value: 100}, {Period: "2025-02", Value: 150}}, trend.Points)
	assert.Equal(t, 50.0, trend.GrowthPercent)
}

func TestDetectTrendGrowth(t *testing.T) {
	tests := []struct {
		name   string
		values [][]any
		check  func(t *testing.T, growth float64)
	}{
		{
			name:   "halving",
			values: [][]any{{"2025-01-15", 10}, {"2025-02-15", 5}},
			check:  func(t *testing.T, g float64) { assert.Equal(t, -50.0, g) },
		},
		{
			name:   "increasing",
			values: [][]any{{"2025-01-03", 1}, {"2025-02-03", 2}, {"2025-03-03", 7}},
			check:  func(t *testing.T, g float64) { assert.Greater(t, g, 0.0) },
		},
		{
			name:   "zero start",
			values: [][]any{{"2025-01-03", 0}, {"2025-02-03", 9}},
			check:  func(t *testing.T, g float64) { assert.Zero(t, g) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trend := trendOf(t, rows([]string{"When", "Amount"}, tt.values...))
			require.NotNil(t, trend)
			tt.check(t, trend.GrowthPercent)
		})
	}
}

func TestDetectTrendSumsWithinMonthAndSorts(t *testing.T) {
	trend := trendOf(t, rows([]string{"Date", "Sales"},
		[]any{"03/10/2025", 5.555},
		[]any{"2025-01-02", 1},
		[]any{"2025-03-20", 4.444},
		[]any{"Jan 30, 2025", 2},
	))

	require.NotNil(t, trend)
	assert.Equal(t, []TrendPoint{{Period: "2025-01", Value: 3}, {Period: "2025-03", Value: 10}}, trend.Points)
}

func TestDetectTrendAbsent(t *testing.T) {
	tests := []struct {
		name string
		raw  []RawRow
	}{
		{"no date column", rows([]string{"Name", "Sales"}, []any{"a", 1}, []any{"b", 2})},
		{"no numeric column", rows([]string{"Date", "Name"}, []any{"2025-01-01", "a"}, []any{"2025-02-01", "b"})},
		{"single period", rows([]string{"Date", "Sales"}, []any{"2025-01-01", 1}, []any{"2025-01-31", 2})},
		{"below threshold", rows([]string{"Date", "Sales"},
			[]any{"2025-01-01", 1}, []any{"soon", 2}, []any{"later", 3}, []any{"2025-02-01", 4})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, trendOf(t, tt.raw))
		})
	}
}

func TestDateColumnPicksFirstQualifying(t *testing.T) {
	table := mustTable(t, rows([]string{"Label", "Created", "Closed"},
		[]any{"x", "2025-01-01", "2025-05-01"},
		[]any{"y", "2025-02-01", "2025-06-01"},
		[]any{"z", "2025-03-01", "unknown"},
	))

	assert.Equal(t, 1, DateColumn(table))
}

func TestParseDate(t *testing.T) {
	for _, s := range []string{"2025-01-31", "2025/01/31", "01/31/2025", "1/31/2025 14:05", "2025-01-31T10:00:00Z", "Jan 31, 2025", "31 Jan 2025", "2025-01"} {
		t.Run(s, func(t *testing.T) {
			d, ok := ParseDate(s)
			require.True(t, ok)
			assert.Equal(t, "2025-01", PeriodKey(d))
		})
	}

	_, ok := ParseDate("Pending")
	assert.False(t, ok)
}
