package main

import (
	"github.com/spf13/cobra"
	"github.com/studiowebux/benchops/internal/nightly"
	"github.com/studiowebux/benchops/internal/ui"
)

var nightlyCmd = &cobra.Command{
	Use:   "nightly",
	Short: "Generate the nightly build report",
	Long: `Collect test results, benchmarks, coverage, the dependency audit and
compatibility results from the working directory and write an HTML and a JSON
report. Missing inputs are reported and replaced with empty data.

Examples:
  benchops nightly
  benchops nightly --output reports/ --metrics-file /var/lib/node_exporter/nightly.prom
  benchops nightly --fail-on-fail`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNightly(cmd)
	},
}

var (
	nightlyOutput      string
	nightlyTitle       string
	nightlyMetricsFile string
	nightlyFailOnFail  bool
)

func init() {
	nightlyCmd.Flags().StringVar(&nightlyOutput, "output", "", "Output directory (default from settings)")
	nightlyCmd.Flags().StringVar(&nightlyTitle, "title", nightly.DefaultTitle, "Project name shown in the report title")
	nightlyCmd.Flags().StringVar(&nightlyMetricsFile, "metrics-file", "", "Write a Prometheus textfile with the evaluation")
	nightlyCmd.Flags().BoolVar(&nightlyFailOnFail, "fail-on-fail", false, "Exit with status 1 when the overall status is FAIL")
}

func runNightly(cmd *cobra.Command) error {
	s := settings.Nightly
	opts := nightly.RunOptions{
		Sources: nightly.Sources{
			TestResultsFiles:   s.TestResultsFiles,
			BenchmarkFile:      s.BenchmarkFile,
			CoverageFile:       s.CoverageFile,
			SecurityAuditFile:  s.SecurityAuditFile,
			CompatibilityFiles: s.CompatibilityFiles,
		},
		OutputDir:   s.OutputDir,
		Title:       nightlyTitle,
		MetricsFile: nightlyMetricsFile,
		FailOnFail:  nightlyFailOnFail,
	}
	if nightlyOutput != "" {
		opts.OutputDir = nightlyOutput
	}

	outcome, err := nightly.Run(opts)
	if outcome != nil {
		out := ui.NewPrinter(cmd.OutOrStdout())
		if outcome.Evaluation.Passed() {
			out.Success("✅ Overall status: %s", outcome.Evaluation.Result())
		} else {
			out.Error("❌ Overall status: %s", outcome.Evaluation.Result())
		}
	}
	return err
}
