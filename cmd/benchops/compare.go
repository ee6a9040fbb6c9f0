package main

import (
	"github.com/spf13/cobra"
	"github.com/studiowebux/benchops/internal/compare"
	"github.com/studiowebux/benchops/internal/ui"
)

var compareCmd = &cobra.Command{
	Use:   "compare <current_results.json>",
	Short: "Compare benchmark results against the baseline",
	Long: `Compare benchmark results against the stored baseline and write a markdown report.

A missing or empty baseline is created from the current results. Any regression
makes the command exit with status 1 unless --update-baseline is given, in which
case the current results become the new baseline.

Examples:
  benchops compare benchmark_results.json
  benchops compare benchmark_results.json --update-baseline
  benchops compare results.json --threshold 0.1 --xlsx comparison.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCompare(cmd, args[0])
	},
}

var (
	compareBaseline       string
	compareReport         string
	compareThreshold      float64
	compareUpdateBaseline bool
	compareXLSX           string
)

func init() {
	compareCmd.Flags().StringVar(&compareBaseline, "baseline", "", "Baseline results file (default from settings)")
	compareCmd.Flags().StringVar(&compareReport, "report", "", "Markdown report path (default from settings)")
	compareCmd.Flags().Float64Var(&compareThreshold, "threshold", 0, "Relative change treated as significant (default from settings)")
	compareCmd.Flags().BoolVar(&compareUpdateBaseline, "update-baseline", false, "Accept the current results as the new baseline")
	compareCmd.Flags().StringVar(&compareXLSX, "xlsx", "", "Also export the comparison as a spreadsheet")
}

func runCompare(cmd *cobra.Command, currentPath string) error {
	opts := compare.RunOptions{
		CurrentPath:    currentPath,
		BaselinePath:   settings.Compare.BaselinePath,
		ReportPath:     settings.Compare.ReportPath,
		Threshold:      settings.Compare.Threshold,
		UpdateBaseline: compareUpdateBaseline,
		XLSXPath:       compareXLSX,
		Out:            cmd.OutOrStdout(),
	}
	if compareBaseline != "" {
		opts.BaselinePath = compareBaseline
	}
	if compareReport != "" {
		opts.ReportPath = compareReport
	}
	if compareThreshold > 0 {
		opts.Threshold = compareThreshold
	}
	if h := openHistory(); h != nil {
		defer h.Close()
		opts.Recorder = h
	}

	out := ui.NewPrinter(cmd.OutOrStdout())
	outcome, err := compare.Run(opts)
	if err != nil {
		if outcome != nil && outcome.Summary.Regressions > 0 {
			out.Error("❌ %d performance regression(s) detected", outcome.Summary.Regressions)
		}
		return err
	}

	switch {
	case outcome.Bootstrapped:
		out.Info("Baseline created at %s", opts.BaselinePath)
	case outcome.Promoted:
		out.Warning("Baseline updated with current results")
	default:
		out.Success("✅ No performance regressions (%d benchmarks)", outcome.Summary.Total)
	}
	return nil
}
