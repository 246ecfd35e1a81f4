package insights

import (
	"path/filepath"
	"strings"
	"time"
)

// InsightReport is the full result of one analysis run.
type InsightReport struct {
	Table        *Table            `json:"table"`
	TotalRows    int               `json:"totalRows"`
	TotalCols    int               `json:"totalCols"`
	QualityScore float64           `json:"qualityScore"`
	Quality      []ColumnQuality   `json:"quality"`
	Numeric      []ColumnStats     `json:"numeric"`
	Categorical  []ColumnFrequency `json:"categorical"`
	Trend        *TrendSeries      `json:"trend,omitempty"`
	Correlations []CorrelationPair `json:"correlations"`
	Narrative    []string          `json:"narrative"`
}

// Analyze runs the whole pipeline over raw rows.
func Analyze(raw []RawRow) (*InsightReport, error) {
	t, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	return AnalyzeTable(t), nil
}

// AnalyzeTable runs the analyzers and the narrative over a normalized table.
func AnalyzeTable(t *Table) *InsightReport {
	quality := AnalyzeQuality(t)
	numeric := AnalyzeNumeric(t)
	r := &InsightReport{
		Table:        t,
		TotalRows:    len(t.Rows),
		TotalCols:    len(t.Headers),
		QualityScore: QualityScore(t, quality),
		Quality:      quality,
		Numeric:      numeric,
		Categorical:  AnalyzeCategorical(t),
		Trend:        DetectTrend(t, numeric),
		Correlations: Correlate(t, numeric),
	}
	r.Narrative = Narrate(r)
	return r
}

// Overview is the headline metric strip of a report.
type Overview struct {
	Rows           int     `json:"rows"`
	Columns        int     `json:"columns"`
	MissingCells   int     `json:"missingCells"`
	NumericColumns int     `json:"numericColumns"`
	Outliers       int     `json:"outliers"`
	Correlations   int     `json:"correlations"`
	QualityScore   float64 `json:"qualityScore"`
}

// Overview summarizes r.
func (r *InsightReport) Overview() Overview {
	return Overview{
		Rows:           r.TotalRows,
		Columns:        r.TotalCols,
		MissingCells:   TotalMissing(r.Quality),
		NumericColumns: len(r.Numeric),
		Outliers:       TotalOutliers(r.Numeric),
		Correlations:   len(r.Correlations),
		QualityScore:   round(r.QualityScore, 1),
	}
}

// AnalysisSession ties a computed report to the upload it came from. It is
// handed to exporters and renderers explicitly.
type AnalysisSession struct {
	ID            string         `json:"id"`
	TransactionID string         `json:"transactionId,omitempty"`
	SourceName    string         `json:"sourceName"`
	Report        *InsightReport `json:"report"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// NewSession wraps report in a session.
func NewSession(id, transactionID, sourceName string, report *InsightReport, now time.Time) *AnalysisSession {
	return &AnalysisSession{
		ID:            id,
		TransactionID: transactionID,
		SourceName:    sourceName,
		Report:        report,
		CreatedAt:     now,
	}
}

// BaseName is the source file name without directory and extension, or
// "dataset" when nothing is left.
func (s *AnalysisSession) BaseName() string {
	return BaseName(s.SourceName)
}

// BaseName strips directory and extension from name.
func BaseName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == "/" {
		return "dataset"
	}
	return base
}

// Artifact file names derived from the session's source.
func (s *AnalysisSession) OriginalName() string {
	return s.BaseName() + "_original" + filepath.Ext(strings.ReplaceAll(s.SourceName, "\\", "/"))
}

func (s *AnalysisSession) CleanedCSVName() string   { return s.BaseName() + "_cleaned.csv" }
func (s *AnalysisSession) CleanedExcelName() string { return s.BaseName() + "_cleaned.xlsx" }
func (s *AnalysisSession) DashboardPDFName() string { return s.BaseName() + "_dashboard.pdf" }

// DemoRows is the sample dataset served by the demo dashboard.
func DemoRows() []RawRow {
	row := func(date, region string, sales, cost any, units int, status string) RawRow {
		return RawRow{
			{Key: "Date", Value: date},
			{Key: "Region", Value: region},
			{Key: "Sales", Value: sales},
			{Key: "Cost", Value: cost},
			{Key: "Units", Value: units},
			{Key: "Status", Value: status},
		}
	}
	return []RawRow{
		row("2025-01-01", "North America Enterprise", 1200, 760, 40, "Won"),
		row("2025-02-01", "North America Enterprise", 1450, 840, 45, "Won"),
		row("2025-03-01", "Europe Mid-Market", 1320, nil, 38, "Lost"),
		row("2025-04-01", "Asia Pacific Enterprise", 1725, 930, 56, "Won"),
		row("2025-05-01", "Latin America Emerging", nil, 905, 49, "Pending"),
		row("2025-06-01", "North America Enterprise", 4580, 995, 210, "Won"),
	}
}

// DemoSourceName names sessions built from DemoRows.
const DemoSourceName = "sample_dashboard_data"
