package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"insightdesk/internal/exporter"
	"insightdesk/internal/insights"
	"insightdesk/internal/tablesource"
)

var nowFunc = time.Now

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		outDir string
		bom    bool
	)

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write the cleaned table as CSV and XLSX",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validator.ValidateTableFile(args[0]); err != nil {
				return err
			}
			rows, err := tablesource.NewReader(opts.logger).ReadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			table, err := insights.Normalize(rows)
			if err != nil {
				return err
			}

			csvData, err := exporter.NewCSVWriter("").WithBOM(bom).CleanedCSV(table)
			if err != nil {
				return fmt.Errorf("encode csv: %w", err)
			}
			xlsxData, err := exporter.NewWorkbookWriter(opts.logger).CleanedWorkbook(table)
			if err != nil {
				return fmt.Errorf("encode workbook: %w", err)
			}

			if err := opts.validator.ValidateOutputDirectory(outDir); err != nil {
				return err
			}
			base := insights.BaseName(args[0])
			outputs := []struct {
				name string
				data []byte
			}{
				{base + "_cleaned.csv", csvData},
				{base + "_cleaned.xlsx", xlsxData},
			}
			for _, o := range outputs {
				path := filepath.Join(outDir, o.name)
				if err := os.WriteFile(path, o.data, 0o644); err != nil {
					return err
				}
				opts.logger.Info("cleaned table written", slog.String("path", path), slog.Int("bytes", len(o.data)))
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", ".", "output directory")
	cmd.Flags().BoolVar(&bom, "bom", false, "prefix the CSV with a UTF-8 byte order mark")
	return cmd
}
