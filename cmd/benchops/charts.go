package main

import (
	"github.com/spf13/cobra"
	"github.com/studiowebux/benchops/internal/charts"
	"github.com/studiowebux/benchops/internal/ui"
)

var chartsCmd = &cobra.Command{
	Use:   "charts",
	Short: "Generate benchmark charts and a summary report",
	Long: `Render PNG charts and a markdown summary from benchmark results.

Charts without matching data are skipped. Trends use recorded comparison
history when available and an illustrative simulation otherwise.

Examples:
  benchops charts --current benchmark_results.json
  benchops charts --current results.json --baseline baseline_benchmarks.json --output charts/`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCharts(cmd)
	},
}

var (
	chartsCurrent  string
	chartsBaseline string
	chartsOutput   string
)

func init() {
	chartsCmd.Flags().StringVar(&chartsCurrent, "current", "", "Current benchmark results JSON file")
	chartsCmd.Flags().StringVar(&chartsBaseline, "baseline", "", "Baseline benchmark results JSON file")
	chartsCmd.Flags().StringVar(&chartsOutput, "output", "", "Output directory for charts (default from settings)")
	chartsCmd.MarkFlagRequired("current")
}

func runCharts(cmd *cobra.Command) error {
	opts := charts.RunOptions{
		CurrentPath:  chartsCurrent,
		BaselinePath: chartsBaseline,
		OutputDir:    settings.Charts.OutputDir,
		Threshold:    settings.Charts.Threshold,
	}
	if chartsOutput != "" {
		opts.OutputDir = chartsOutput
	}
	if h := openHistory(); h != nil {
		defer h.Close()
		opts.Trends = h
	}

	result, err := charts.Run(opts)
	if err != nil {
		return err
	}

	out := ui.NewPrinter(cmd.OutOrStdout())
	out.Success("Generated %d file(s) in %s", len(result.Generated), opts.OutputDir)
	for _, name := range result.Skipped {
		out.Info("Skipped %s", name)
	}
	return nil
}
