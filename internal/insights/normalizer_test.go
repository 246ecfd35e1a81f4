package insights

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Cell
	}{
		{"nil", nil, Null()},
		{"finite float", 12.5, Number(12.5)},
		{"int", 42, Number(42)},
		{"NaN", math.NaN(), Null()},
		{"infinity", math.Inf(1), Null()},
		{"blank string", "   ", Null()},
		{"trimmed text", "  North  ", Text("North")},
		{"grouped number", "1,234.50", Number(1234.5)},
		{"negative number", "-17", Number(-17)},
		{"exponent stays text", "1e5", Text("1e5")},
		{"currency stays text", "$100", Text("$100")},
		{"double dot stays text", "1.2.3", Text("1.2.3")},
		{"date stays text", "2025-01-01", Text("2025-01-01")},
		{"midnight time", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Text("2025-03-01")},
		{"bool", true, Text("true")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeValue(tt.in))
		})
	}
}

func TestNormalizeHeaders(t *testing.T) {
	raw := []RawRow{
		{{Key: " Name ", Value: "a"}, {Key: "", Value: 1}},
		{{Key: "Score", Value: "3"}, {Key: "Name", Value: "b"}},
	}

	table, err := Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "column_2", "Score", "Name_2"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, Row{Text("a"), Number(1), Null(), Null()}, table.Rows[0])
	assert.Equal(t, Row{Null(), Null(), Number(3), Text("b")}, table.Rows[1])
}

func TestNormalizeDropsEmptyRows(t *testing.T) {
	raw := []RawRow{
		{{Key: "A", Value: nil}, {Key: "B", Value: "  "}},
		{{Key: "A", Value: "x"}, {Key: "B", Value: nil}},
	}

	table, err := Normalize(raw)
	require.NoError(t, err)
	assert.Len(t, table.Rows, 1)
}

func TestNormalizeEmptyInput(t *testing.T) {
	tests := []struct {
		name string
		raw  []RawRow
	}{
		{"no rows", nil},
		{"single null row", []RawRow{{{Key: "A", Value: nil}, {Key: "B", Value: nil}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.raw)
			require.Error(t, err)
			assert.True(t, IsEmptyInput(err))
			assert.EqualError(t, err, "no usable rows after cleaning")
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	raw := append(DemoRows(), RawRow{
		{Key: "Date", Value: time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC)},
		{Key: "Sales", Value: " 2,000 "},
		{Key: "Extra", Value: "note"},
	})

	first, err := Normalize(raw)
	require.NoError(t, err)
	second, err := Normalize(first.RawRows())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
