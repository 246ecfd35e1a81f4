package insights

import (
	"math"
	"sort"
)

const (
	correlationColumns  = 6
	correlationMinPairs = 3
	correlationLimit    = 8
)

// CorrelationPair is the Pearson coefficient between two numeric columns,
// rounded to three decimals.
type CorrelationPair struct {
	ColumnA     string  `json:"columnA"`
	ColumnB     string  `json:"columnB"`
	Coefficient float64 `json:"coefficient"`
	Strength    string  `json:"strength"`
}

// Label renders the pair as "A ↔ B".
func (p CorrelationPair) Label() string {
	return p.ColumnA + " ↔ " + p.ColumnB
}

// Strength buckets an absolute coefficient.
func Strength(abs float64) string {
	switch {
	case abs >= 0.8:
		return "Very strong"
	case abs >= 0.6:
		return "Strong"
	case abs >= 0.4:
		return "Moderate"
	case abs >= 0.2:
		return "Weak"
	default:
		return "Very weak"
	}
}

// Correlate computes Pearson correlations between the first six columns of
// numeric (highest means). A pair needs at least three rows where both
// cells are numbers; pairs with zero variance are skipped. The result holds
// at most eight pairs ordered by absolute coefficient.
func Correlate(t *Table, numeric []ColumnStats) []CorrelationPair {
	var cols []int
	var names []string
	for _, s := range numeric {
		if len(cols) == correlationColumns {
			break
		}
		if idx := t.Index(s.Header); idx >= 0 {
			cols = append(cols, idx)
			names = append(names, s.Header)
		}
	}

	var out []CorrelationPair
	for i := 0; i < len(cols); i++ {
		for j := i + 1; j < len(cols); j++ {
			r, ok := pearson(t, cols[i], cols[j])
			if !ok {
				continue
			}
			out = append(out, CorrelationPair{
				ColumnA:     names[i],
				ColumnB:     names[j],
				Coefficient: r,
				Strength:    Strength(math.Abs(r)),
			})
		}
	}

	sort.SliceStable(out, func(a, b int) bool {
		return math.Abs(out[a].Coefficient) > math.Abs(out[b].Coefficient)
	})
	if len(out) > correlationLimit {
		out = out[:correlationLimit]
	}
	return out
}

func pearson(t *Table, colA, colB int) (float64, bool) {
	var as, bs []float64
	for _, row := range t.Rows {
		a, okA := row[colA].Float()
		b, okB := row[colB].Float()
		if okA && okB {
			as = append(as, a)
			bs = append(bs, b)
		}
	}
	if len(as) < correlationMinPairs {
		return 0, false
	}

	var sumA, sumB float64
	for i := range as {
		sumA += as[i]
		sumB += bs[i]
	}
	meanA, meanB := sumA/float64(len(as)), sumB/float64(len(bs))

	var num, denA, denB float64
	for i := range as {
		da, db := as[i]-meanA, bs[i]-meanB
		num += da * db
		denA += da * da
		denB += db * db
	}
	den := math.Sqrt(denA * denB)
	if den == 0 {
		return 0, false
	}
	return round(num/den, 3), true
}
