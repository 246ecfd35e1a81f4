package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"insightdesk/internal/config"
	"insightdesk/internal/render"
)

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var (
		asJSON  bool
		htmlOut string
		pdfOut  string
	)

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze a CSV, XLSX or XLS file and print the narrative",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			session, err := analyzeFile(ctx, args[0], opts)
			if err != nil {
				return err
			}

			if htmlOut != "" || pdfOut != "" {
				cfg := config.Default().Renderer
				cfg.PDFEnabled = pdfOut != ""
				renderer := render.NewRenderer(render.NewPrinter(cfg, opts.logger))

				if htmlOut != "" {
					html, err := renderer.HTML(session)
					if err != nil {
						return fmt.Errorf("render dashboard: %w", err)
					}
					if err := os.WriteFile(htmlOut, html, 0o644); err != nil {
						return err
					}
				}
				if pdfOut != "" {
					pdf, err := renderer.PDF(ctx, session)
					if err != nil {
						return fmt.Errorf("print dashboard: %w", err)
					}
					if err := os.WriteFile(pdfOut, pdf, 0o644); err != nil {
						return err
					}
				}
			}

			return printSession(cmd.OutOrStdout(), session, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full report as JSON")
	cmd.Flags().StringVar(&htmlOut, "html", "", "write the dashboard HTML to this path")
	cmd.Flags().StringVar(&pdfOut, "pdf", "", "print the dashboard PDF to this path (needs Chrome)")
	return cmd
}
