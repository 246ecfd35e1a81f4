package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"insightdesk/internal/config"
	"insightdesk/internal/infrastructure"
	"insightdesk/internal/insights"
	"insightdesk/internal/tablesource"
	"insightdesk/internal/validation"
)

type rootOptions struct {
	logLevel  string
	logger    *slog.Logger
	validator *validation.FileValidator
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "insight",
		Short:         "Data-quality and statistical insights for CSV and Excel files",
		Long:          `insight reads a CSV, XLSX or XLS file, normalizes it, and reports data quality, numeric and categorical profiles, trends, correlations and a plain-language narrative.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			opts.logger = infrastructure.NewLogger(config.LoggingConfig{
				Level:  opts.logLevel,
				Format: "text",
			}, cmd.ErrOrStderr())
			opts.validator = validation.NewFileValidator(opts.logger)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newAnalyzeCmd(opts),
		newExportCmd(opts),
		newDemoCmd(opts),
	)
	return cmd
}

// analyzeFile reads path and runs the pipeline over it.
func analyzeFile(ctx context.Context, path string, opts *rootOptions) (*insights.AnalysisSession, error) {
	if err := opts.validator.ValidateTableFile(path); err != nil {
		return nil, err
	}
	rows, err := tablesource.NewReader(opts.logger).ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	report, err := insights.Analyze(rows)
	if err != nil {
		return nil, err
	}
	return insights.NewSession("local", "", filepath.Base(path), report, nowFunc()), nil
}

type reportOutput struct {
	SourceName   string                     `json:"sourceName"`
	Overview     insights.Overview          `json:"overview"`
	Narrative    []string                   `json:"narrative"`
	Quality      []insights.ColumnQuality   `json:"quality"`
	Numeric      []insights.ColumnStats     `json:"numeric"`
	Categorical  []insights.ColumnFrequency `json:"categorical"`
	Trend        *insights.TrendSeries      `json:"trend,omitempty"`
	Correlations []insights.CorrelationPair `json:"correlations"`
}

func printSession(w io.Writer, s *insights.AnalysisSession, asJSON bool) error {
	r := s.Report
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reportOutput{
			SourceName:   s.SourceName,
			Overview:     r.Overview(),
			Narrative:    r.Narrative,
			Quality:      r.Quality,
			Numeric:      r.Numeric,
			Categorical:  r.Categorical,
			Trend:        r.Trend,
			Correlations: r.Correlations,
		})
	}

	o := r.Overview()
	fmt.Fprintf(w, "%s\n", s.SourceName)
	fmt.Fprintf(w, "  rows: %d  columns: %d  missing cells: %d  quality: %s%% (%s)\n\n",
		o.Rows, o.Columns, o.MissingCells, insights.FormatNumber(o.QualityScore), insights.Readiness(r.QualityScore))
	for _, line := range r.Narrative {
		fmt.Fprintf(w, "- %s\n", line)
	}
	return nil
}
