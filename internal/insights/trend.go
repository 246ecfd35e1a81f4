package insights

import (
	"math"
	"sort"
)

// dateColumnThreshold is the share of text values that must parse as dates
// for a column to be used as the trend axis.
const dateColumnThreshold = 0.7

// TrendPoint is the summed metric of one YYYY-MM period.
type TrendPoint struct {
	Period string  `json:"period"`
	Value  float64 `json:"value"`
}

// TrendSeries is a monthly aggregation of the leading numeric column.
type TrendSeries struct {
	DateHeader    string       `json:"dateHeader"`
	MetricHeader  string       `json:"metricHeader"`
	Points        []TrendPoint `json:"points"`
	GrowthPercent float64      `json:"growthPercent"`
}

// DetectTrend aggregates numeric[0] by month along the first date column.
// It returns nil when there is no date column, no numeric column, or fewer
// than two periods.
func DetectTrend(t *Table, numeric []ColumnStats) *TrendSeries {
	if len(numeric) == 0 {
		return nil
	}
	dateCol := DateColumn(t)
	if dateCol < 0 {
		return nil
	}
	metricCol := t.Index(numeric[0].Header)
	if metricCol < 0 {
		return nil
	}

	sums := make(map[string]float64)
	for _, row := range t.Rows {
		d := row[dateCol]
		if !d.IsText() {
			continue
		}
		when, ok := ParseDate(d.Str)
		if !ok {
			continue
		}
		v, ok := row[metricCol].Float()
		if !ok {
			continue
		}
		sums[PeriodKey(when)] += v
	}
	if len(sums) < 2 {
		return nil
	}

	points := make([]TrendPoint, 0, len(sums))
	for period, v := range sums {
		points = append(points, TrendPoint{Period: period, Value: round(v, 2)})
	}
	sort.Slice(points, func(a, b int) bool { return points[a].Period < points[b].Period })

	return &TrendSeries{
		DateHeader:    t.Headers[dateCol],
		MetricHeader:  numeric[0].Header,
		Points:        points,
		GrowthPercent: growth(points[0].Value, points[len(points)-1].Value),
	}
}

// DateColumn returns the index of the first header whose text values parse
// as dates at least 70% of the time, or -1.
func DateColumn(t *Table) int {
	for i := range t.Headers {
		texts, parsed := 0, 0
		for _, row := range t.Rows {
			c := row[i]
			if !c.IsText() {
				continue
			}
			texts++
			if _, ok := ParseDate(c.Str); ok {
				parsed++
			}
		}
		if texts > 0 && float64(parsed)/float64(texts) >= dateColumnThreshold {
			return i
		}
	}
	return -1
}

func growth(first, last float64) float64 {
	if first == 0 {
		return 0
	}
	return round((last-first)/math.Abs(first)*100, 1)
}
