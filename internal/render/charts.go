package render

import (
	"fmt"
	"math"
	"strconv"

	"insightdesk/internal/insights"
)

// Chart kinds understood by the dashboard.
const (
	KindRadar       = "radar"
	KindBar         = "bar"
	KindStackedBar  = "stacked-bar"
	KindDoughnut    = "doughnut"
	KindPie         = "pie"
	KindLine        = "line"
	defaultLabelMax = 14
	compactLabelMax = 12
)

// Dataset is one series of a chart.
type Dataset struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// Chart is presentation-ready chart data. Labels are display labels,
// FullLabels the untruncated originals in the same order.
type Chart struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Kind        string    `json:"kind"`
	Labels      []string  `json:"labels"`
	FullLabels  []string  `json:"fullLabels"`
	Datasets    []Dataset `json:"datasets"`
	Placeholder bool      `json:"placeholder,omitempty"`
}

// Metric is one headline figure of the overview strip.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ChartSet is everything the dashboard draws for one report.
type ChartSet struct {
	Overview []Metric `json:"overview"`
	Charts   []Chart  `json:"charts"`
}

// BuildCharts derives the dashboard charts from a report.
func BuildCharts(r *insights.InsightReport) ChartSet {
	return ChartSet{
		Overview: OverviewMetrics(r),
		Charts: []Chart{
			completenessChart(r),
			meanChart(r),
			categoryChart(r),
			trendChart(r),
			stackedCategoryChart(r),
			outlierChart(r),
			qualityMixChart(r),
			volatilityChart(r),
		},
	}
}

// OverviewMetrics lists the headline numbers shown above the charts.
func OverviewMetrics(r *insights.InsightReport) []Metric {
	o := r.Overview()
	return []Metric{
		{Label: "Rows after cleaning", Value: strconv.Itoa(o.Rows)},
		{Label: "Columns", Value: strconv.Itoa(o.Columns)},
		{Label: "Total missing cells", Value: strconv.Itoa(o.MissingCells)},
		{Label: "Numeric columns", Value: strconv.Itoa(o.NumericColumns)},
		{Label: "Outlier points detected", Value: strconv.Itoa(o.Outliers)},
		{Label: "Top correlations", Value: strconv.Itoa(o.Correlations)},
		{Label: "Data quality score", Value: fmt.Sprintf("%.1f%%", r.QualityScore)},
	}
}

// TruncateLabel shortens label to max runes, ending it with an ellipsis.
func TruncateLabel(label string, max int) string {
	runes := []rune(label)
	if len(runes) <= max {
		return label
	}
	return string(runes[:max-1]) + "…"
}

// RiskScore is the volatility fallback shown when no column has outliers.
func RiskScore(s insights.ColumnStats) float64 {
	return math.Round(s.StdDev/(math.Abs(s.Mean)+1)*100*100) / 100
}

func labels(full []string, max int) []string {
	out := make([]string, len(full))
	for i, l := range full {
		out[i] = TruncateLabel(l, max)
	}
	return out
}

func placeholder(id, title, kind, label, series string) Chart {
	return Chart{
		ID:          id,
		Title:       title,
		Kind:        kind,
		Labels:      []string{label},
		FullLabels:  []string{label},
		Datasets:    []Dataset{{Label: series, Values: []float64{0}}},
		Placeholder: true,
	}
}

func firstN[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func completenessChart(r *insights.InsightReport) Chart {
	cols := firstN(r.Quality, 10)
	full := make([]string, len(cols))
	values := make([]float64, len(cols))
	for i, q := range cols {
		full[i] = q.Header
		values[i] = q.CompletenessPercent
	}
	return Chart{
		ID: "completeness", Title: "Column completeness", Kind: KindRadar,
		Labels: labels(full, defaultLabelMax), FullLabels: full,
		Datasets: []Dataset{{Label: "Completeness %", Values: values}},
	}
}

func meanChart(r *insights.InsightReport) Chart {
	cols := firstN(r.Numeric, 8)
	full := make([]string, len(cols))
	values := make([]float64, len(cols))
	for i, s := range cols {
		full[i] = s.Header
		values[i] = s.Mean
	}
	return Chart{
		ID: "numeric-mean", Title: "Numeric means", Kind: KindBar,
		Labels: labels(full, defaultLabelMax), FullLabels: full,
		Datasets: []Dataset{{Label: "Mean value", Values: values}},
	}
}

func categoryChart(r *insights.InsightReport) Chart {
	var entries []insights.FrequencyEntry
	title := "Category distribution"
	if len(r.Categorical) > 0 {
		entries = firstN(r.Categorical[0].Entries, 6)
		title = r.Categorical[0].Header + " distribution"
	}
	full := make([]string, len(entries))
	values := make([]float64, len(entries))
	for i, e := range entries {
		full[i] = e.Value
		values[i] = float64(e.Count)
	}
	return Chart{
		ID: "category", Title: title, Kind: KindDoughnut,
		Labels: labels(full, defaultLabelMax), FullLabels: full,
		Datasets: []Dataset{{Label: "Count", Values: values}},
	}
}

func trendChart(r *insights.InsightReport) Chart {
	if r.Trend == nil {
		return placeholder("trend", "Trend", KindLine, "No time-series found", "N/A")
	}
	full := make([]string, len(r.Trend.Points))
	values := make([]float64, len(r.Trend.Points))
	for i, p := range r.Trend.Points {
		full[i] = p.Period
		values[i] = p.Value
	}
	return Chart{
		ID: "trend", Title: "Trend", Kind: KindLine,
		Labels: labels(full, compactLabelMax), FullLabels: full,
		Datasets: []Dataset{{Label: r.Trend.MetricHeader + " over time", Values: values}},
	}
}

func stackedCategoryChart(r *insights.InsightReport) Chart {
	cats := firstN(r.Categorical, 3)
	if len(cats) == 0 {
		return placeholder("stacked-category", "Category comparison", KindStackedBar, "N/A", "No category data")
	}
	top := firstN(cats[0].Entries, 6)
	full := make([]string, len(top))
	for i, e := range top {
		full[i] = e.Value
	}
	datasets := make([]Dataset, len(cats))
	for d, cat := range cats {
		values := make([]float64, len(full))
		for i, name := range full {
			values[i] = float64(cat.CountOf(name))
		}
		datasets[d] = Dataset{Label: cat.Header, Values: values}
	}
	return Chart{
		ID: "stacked-category", Title: "Category comparison", Kind: KindStackedBar,
		Labels: labels(full, compactLabelMax), FullLabels: full,
		Datasets: datasets,
	}
}

// outlierChart shows outlier counts, or volatility risk scores when no
// column has any outliers.
func outlierChart(r *insights.InsightReport) Chart {
	cols := firstN(r.Numeric, 8)
	if len(cols) == 0 {
		return placeholder("outliers", "Outliers", KindBar, "N/A", "No numeric data")
	}
	full := make([]string, len(cols))
	counts := make([]float64, len(cols))
	risk := make([]float64, len(cols))
	hasOutliers := false
	for i, s := range cols {
		full[i] = s.Header
		counts[i] = float64(s.OutlierCount)
		risk[i] = RiskScore(s)
		if s.OutlierCount > 0 {
			hasOutliers = true
		}
	}
	ds := Dataset{Label: "Volatility risk score", Values: risk}
	if hasOutliers {
		ds = Dataset{Label: "Outlier count", Values: counts}
	}
	return Chart{
		ID: "outliers", Title: "Outliers", Kind: KindBar,
		Labels: labels(full, defaultLabelMax), FullLabels: full,
		Datasets: []Dataset{ds},
	}
}

func qualityMixChart(r *insights.InsightReport) Chart {
	var strong, watch, risk float64
	for _, q := range r.Quality {
		switch {
		case q.CompletenessPercent >= 90:
			strong++
		case q.CompletenessPercent >= 70:
			watch++
		default:
			risk++
		}
	}
	full := []string{"High quality columns", "Watchlist columns", "At-risk columns"}
	return Chart{
		ID: "quality-mix", Title: "Quality mix", Kind: KindPie,
		Labels: full, FullLabels: full,
		Datasets: []Dataset{{Label: "Columns", Values: []float64{strong, watch, risk}}},
	}
}

func volatilityChart(r *insights.InsightReport) Chart {
	cols := firstN(r.Numeric, 8)
	if len(cols) == 0 {
		return placeholder("volatility", "Volatility", KindBar, "N/A", "No numeric data")
	}
	full := make([]string, len(cols))
	values := make([]float64, len(cols))
	for i, s := range cols {
		full[i] = s.Header
		values[i] = s.StdDev
	}
	return Chart{
		ID: "volatility", Title: "Volatility", Kind: KindLine,
		Labels: labels(full, defaultLabelMax), FullLabels: full,
		Datasets: []Dataset{{Label: "Std dev (volatility)", Values: values}},
	}
}
