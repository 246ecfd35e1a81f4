package insights

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func correlationsOf(t *testing.T, raw []RawRow) []CorrelationPair {
	t.Helper()
	table := mustTable(t, raw)
	return Correlate(table, AnalyzeNumeric(table))
}

func TestCorrelatePerfectLinear(t *testing.T) {
	pairs := correlationsOf(t, rows([]string{"X", "Y"},
		[]any{1, 2},
		[]any{2, 4},
		[]any{3, 6},
	))

	require.Len(t, pairs, 1)
	assert.ElementsMatch(t, []string{"X", "Y"}, []string{pairs[0].ColumnA, pairs[0].ColumnB})
	assert.Equal(t, 1.0, pairs[0].Coefficient)
	assert.Equal(t, "Very strong", pairs[0].Strength)
}

func TestCorrelateShiftedScale(t *testing.T) {
	var values [][]any
	for _, a := range []float64{3, 8, 1, 12, 7, 4} {
		values = append(values, []any{a, 2*a + 1})
	}

	pairs := correlationsOf(t, rows([]string{"A", "B"}, values...))
	require.Len(t, pairs, 1)
	assert.InDelta(t, 1.0, pairs[0].Coefficient, 0.001)
}

func TestCorrelateSkipsPairs(t *testing.T) {
	t.Run("too few overlapping rows", func(t *testing.T) {
		pairs := correlationsOf(t, rows([]string{"A", "B"},
			[]any{1, nil},
			[]any{2, 4},
			[]any{3, 6},
			[]any{nil, 8},
		))
		assert.Empty(t, pairs)
	})

	t.Run("zero variance", func(t *testing.T) {
		pairs := correlationsOf(t, rows([]string{"A", "B"},
			[]any{1, 5},
			[]any{2, 5},
			[]any{3, 5},
		))
		assert.Empty(t, pairs)
	})
}

func TestCorrelateLimits(t *testing.T) {
	keys := make([]string, 8)
	for i := range keys {
		keys[i] = fmt.Sprintf("C%d", i)
	}
	var values [][]any
	for r := 0; r < 10; r++ {
		row := make([]any, len(keys))
		for c := range keys {
			row[c] = float64(c*100) + math.Mod(float64(r*(c+3)), 7)
		}
		values = append(values, row)
	}
	table := mustTable(t, rows(keys, values...))
	pairs := Correlate(table, AnalyzeNumeric(table))

	assert.LessOrEqual(t, len(pairs), 8)
	for i := 1; i < len(pairs); i++ {
		assert.GreaterOrEqual(t, math.Abs(pairs[i-1].Coefficient), math.Abs(pairs[i].Coefficient))
	}
	for _, p := range pairs {
		assert.NotContains(t, []string{"C0", "C1"}, p.ColumnA)
		assert.NotContains(t, []string{"C0", "C1"}, p.ColumnB)
	}
}

func TestStrength(t *testing.T) {
	tests := []struct {
		abs  float64
		want string
	}{
		{1, "Very strong"},
		{0.8, "Very strong"},
		{0.79, "Strong"},
		{0.6, "Strong"},
		{0.4, "Moderate"},
		{0.2, "Weak"},
		{0.19, "Very weak"},
		{0, "Very weak"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Strength(tt.abs), "abs=%v", tt.abs)
	}
}

func TestCorrelationLabel(t *testing.T) {
	assert.Equal(t, "Sales ↔ Units", CorrelationPair{ColumnA: "Sales", ColumnB: "Units"}.Label())
}
