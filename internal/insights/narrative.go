package insights

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	noTrendSentence    = "Trend intelligence: no reliable date column found, so trend confidence is low until date fields are standardized."
	actionPlanSentence = "Action plan: (1) remediate the highest-missing columns, (2) validate outliers with domain owners, (3) monitor the time trend KPI weekly, and (4) export the cleaned dataset and dashboard snapshot for reporting."
)

// Readiness labels a quality score: strong from 85, moderate from 65,
// high-risk below.
func Readiness(score float64) string {
	switch {
	case score >= 85:
		return "strong"
	case score >= 65:
		return "moderate"
	default:
		return "high-risk"
	}
}

// Narrate composes the summary sentences for r. Sentences whose source data
// is missing are left out; the executive summary, the trend statement and
// the action plan are always present.
func Narrate(r *InsightReport) []string {
	out := []string{
		fmt.Sprintf("Executive summary: this dataset achieved a %s%% quality score after cleaning, indicating %s analytical readiness.",
			strconv.FormatFloat(r.QualityScore, 'f', 1, 64), Readiness(r.QualityScore)),
	}

	if best, ok := mostComplete(r.Quality); ok {
		out = append(out, fmt.Sprintf("Strength: %s is the most reliable column at %s%% completeness.",
			best.Header, FormatNumber(best.CompletenessPercent)))
	}
	if worst, ok := leastComplete(r.Quality); ok {
		out = append(out, fmt.Sprintf("Risk hotspot: %s has %s%% missing values and should be prioritized for source-fix workflows.",
			worst.Header, strconv.FormatFloat(worst.MissingPercent, 'f', 1, 64)))
	}
	if len(r.Numeric) > 0 {
		top := r.Numeric[0]
		out = append(out, fmt.Sprintf("Primary KPI signal: %s leads numeric impact (mean %s, range %s–%s).",
			top.Header, FormatNumber(top.Mean), FormatNumber(top.Min), FormatNumber(top.Max)))
	}
	if anomaly, ok := mostOutliers(r.Numeric); ok {
		out = append(out, fmt.Sprintf("Anomaly watch: %s contains %d potential outliers requiring business review.",
			anomaly.Header, anomaly.OutlierCount))
	}
	if len(r.Categorical) > 0 && len(r.Categorical[0].Entries) > 0 {
		dominant := r.Categorical[0].Entries[0]
		out = append(out, fmt.Sprintf("Behavioral pattern: '%s' is the dominant category (%d records), suggesting concentration around this segment.",
			dominant.Value, dominant.Count))
	}
	if tr := r.Trend; tr != nil {
		out = append(out, fmt.Sprintf("Trend intelligence: %s changed by %s%% across %d time periods (using %s).",
			tr.MetricHeader, FormatNumber(tr.GrowthPercent), len(tr.Points), tr.DateHeader))
	} else {
		out = append(out, noTrendSentence)
	}
	if len(r.Correlations) > 0 {
		c := r.Correlations[0]
		out = append(out, fmt.Sprintf("Relationship signal: %s shows a correlation of %s (%s association), helping identify linked performance drivers.",
			c.Label(), FormatNumber(c.Coefficient), strings.ToLower(c.Strength)))
	}
	return append(out, actionPlanSentence)
}

// Summary joins the narrative into one paragraph.
func Summary(r *InsightReport) string {
	return strings.Join(Narrate(r), " ")
}

func mostComplete(q []ColumnQuality) (ColumnQuality, bool) {
	if len(q) == 0 {
		return ColumnQuality{}, false
	}
	best := q[0]
	for _, c := range q[1:] {
		if c.CompletenessPercent > best.CompletenessPercent {
			best = c
		}
	}
	return best, true
}

func leastComplete(q []ColumnQuality) (ColumnQuality, bool) {
	if len(q) == 0 {
		return ColumnQuality{}, false
	}
	worst := q[0]
	for _, c := range q[1:] {
		if c.CompletenessPercent < worst.CompletenessPercent {
			worst = c
		}
	}
	return worst, true
}

func mostOutliers(stats []ColumnStats) (ColumnStats, bool) {
	if len(stats) == 0 {
		return ColumnStats{}, false
	}
	top := stats[0]
	for _, s := range stats[1:] {
		if s.OutlierCount > top.OutlierCount {
			top = s
		}
	}
	return top, true
}
