package render

import (
	"context"
	"fmt"

	"insightdesk/internal/insights"
)

// Renderer turns an analysis session into chart data, an HTML dashboard and
// a PDF snapshot of that dashboard.
type Renderer struct {
	printer PDFPrinter
}

// NewRenderer uses printer for PDF output. A nil printer disables PDFs.
func NewRenderer(printer PDFPrinter) *Renderer {
	if printer == nil {
		printer = DisabledPrinter{}
	}
	return &Renderer{printer: printer}
}

// Charts builds the dashboard chart set for r.
func (rd *Renderer) Charts(r *insights.InsightReport) ChartSet {
	return BuildCharts(r)
}

// HTML renders the standalone dashboard page for s.
func (rd *Renderer) HTML(s *insights.AnalysisSession) ([]byte, error) {
	return DashboardHTML(s, BuildCharts(s.Report))
}

// PDF prints the dashboard page for s.
func (rd *Renderer) PDF(ctx context.Context, s *insights.AnalysisSession) ([]byte, error) {
	page, err := rd.HTML(s)
	if err != nil {
		return nil, fmt.Errorf("render dashboard: %w", err)
	}
	return rd.printer.PrintPDF(ctx, page)
}
