package main

import (
	"github.com/spf13/cobra"

	"insightdesk/internal/insights"
)

const demoSourceName = "sample_dashboard_data"

func newDemoCmd(_ *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Analyze the built-in sample sales dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := insights.Analyze(insights.DemoRows())
			if err != nil {
				return err
			}
			session := insights.NewSession("demo", "", demoSourceName, report, nowFunc())
			return printSession(cmd.OutOrStdout(), session, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full report as JSON")
	return cmd
}
