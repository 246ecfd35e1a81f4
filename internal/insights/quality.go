package insights

import "math"

// ColumnQuality describes missingness of one column.
type ColumnQuality struct {
	Header              string  `json:"header"`
	MissingCount        int     `json:"missingCount"`
	MissingPercent      float64 `json:"missingPercent"`
	CompletenessPercent float64 `json:"completenessPercent"`
}

// AnalyzeQuality reports missing cells per header, in header order.
// Percentages carry one decimal.
func AnalyzeQuality(t *Table) []ColumnQuality {
	total := len(t.Rows)
	out := make([]ColumnQuality, 0, len(t.Headers))
	for i, h := range t.Headers {
		missing := 0
		for _, row := range t.Rows {
			if row[i].IsNull() {
				missing++
			}
		}
		q := ColumnQuality{Header: h, MissingCount: missing}
		if total > 0 {
			ratio := float64(missing) / float64(total) * 100
			q.MissingPercent = round(ratio, 1)
			q.CompletenessPercent = math.Max(0, math.Min(100, round(100-ratio, 1)))
		}
		out = append(out, q)
	}
	return out
}

// TotalMissing sums missing cells over all columns.
func TotalMissing(quality []ColumnQuality) int {
	n := 0
	for _, q := range quality {
		n += q.MissingCount
	}
	return n
}

// QualityScore is 100 minus the percentage of missing cells in the table,
// floored at 0. It is not rounded.
func QualityScore(t *Table, quality []ColumnQuality) float64 {
	cells := len(t.Rows) * len(t.Headers)
	if cells == 0 {
		cells = 1
	}
	return math.Max(0, 100-float64(TotalMissing(quality))/float64(cells)*100)
}
