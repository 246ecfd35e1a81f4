package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"math"
	"strings"
	"time"

	"insightdesk/internal/insights"
)

//go:embed templates/dashboard.html.tmpl
var templateFS embed.FS

var dashboardTemplate = template.Must(
	template.New("dashboard.html.tmpl").
		Funcs(template.FuncMap{"num": insights.FormatNumber}).
		ParseFS(templateFS, "templates/dashboard.html.tmpl"),
)

var palette = []string{"#2563eb", "#10b981", "#f59e0b", "#ef4444", "#8b5cf6", "#06b6d4", "#14b8a6", "#84cc16"}

const (
	barTrackWidth = 220.0
	barRowHeight  = 20
)

type barView struct {
	Label  string
	Full   string
	Value  string
	Width  float64
	Y      int
	TextY  int
	ValueX float64
	Color  string
}

type seriesView struct {
	Label  string
	Height int
	Bars   []barView
}

type chartView struct {
	Chart
	Series []seriesView
}

type categoryView struct {
	Header string
	Top    string
}

type dashboardView struct {
	Title        string
	GeneratedAt  string
	Overview     []Metric
	Narrative    string
	Charts       []chartView
	Quality      []insights.ColumnQuality
	Numeric      []insights.ColumnStats
	Categories   []categoryView
	Correlations []insights.CorrelationPair
}

// DashboardHTML renders the session as a standalone HTML page with inline
// SVG charts. It is the snapshot the PDF printer consumes.
func DashboardHTML(s *insights.AnalysisSession, charts ChartSet) ([]byte, error) {
	r := s.Report
	view := dashboardView{
		Title:        s.BaseName(),
		GeneratedAt:  s.CreatedAt.UTC().Format(time.RFC1123),
		Overview:     charts.Overview,
		Narrative:    insights.Summary(r),
		Quality:      r.Quality,
		Numeric:      r.Numeric,
		Correlations: r.Correlations,
	}
	for _, c := range charts.Charts {
		view.Charts = append(view.Charts, newChartView(c))
	}
	for _, cat := range r.Categorical {
		parts := make([]string, len(cat.TopEntries))
		for i, e := range cat.TopEntries {
			parts[i] = fmt.Sprintf("%s (%d)", e.Value, e.Count)
		}
		view.Categories = append(view.Categories, categoryView{Header: cat.Header, Top: strings.Join(parts, ", ")})
	}

	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("failed to render dashboard: %w", err)
	}
	return buf.Bytes(), nil
}

func newChartView(c Chart) chartView {
	v := chartView{Chart: c}
	if c.Placeholder {
		return v
	}
	for d, ds := range c.Datasets {
		maxAbs := 0.0
		for _, val := range ds.Values {
			maxAbs = math.Max(maxAbs, math.Abs(val))
		}
		color := palette[d%len(palette)]
		sv := seriesView{Label: ds.Label, Height: len(ds.Values)*barRowHeight + 4}
		for i, val := range ds.Values {
			width := 0.0
			if maxAbs > 0 {
				width = math.Round(math.Abs(val)/maxAbs*barTrackWidth*10) / 10
			}
			y := i * barRowHeight
			label, full := "", ""
			if i < len(c.Labels) {
				label, full = c.Labels[i], c.FullLabels[i]
			}
			sv.Bars = append(sv.Bars, barView{
				Label:  label,
				Full:   full,
				Value:  insights.FormatNumber(val),
				Width:  width,
				Y:      y + 2,
				TextY:  y + 13,
				ValueX: 114 + width,
				Color:  color,
			})
		}
		v.Series = append(v.Series, sv)
	}
	return v
}
