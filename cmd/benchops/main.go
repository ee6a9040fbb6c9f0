package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/studiowebux/benchops/internal/config"
	"github.com/studiowebux/benchops/internal/history"
	"github.com/studiowebux/benchops/internal/logging"
	"github.com/studiowebux/benchops/internal/stresstest"
	"go.uber.org/zap"
)

var (
	version = "0.1.0"
)

// settings is loaded once by the root command before any subcommand runs
var settings *config.Settings

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	zap.L().Sync()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "benchops",
	Short: "CI utilities for benchmarks, nightly reports and load tests",
	Long: `benchops bundles the CI pipeline's operational tools:

  compare   detect benchmark regressions against a stored baseline
  charts    render benchmark charts and a markdown summary
  nightly   merge test, coverage, audit and compatibility results into a report
  loadtest  open many concurrent client sessions against a server
  history   browse results recorded by previous runs

Settings are read from ./.benchops.yaml or ~/.benchops/config.yaml and can be
overridden with BENCHOPS_* environment variables and command flags.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		s, err := config.Load(flagConfigFile)
		if err != nil {
			return err
		}
		settings = s

		logOpts := logging.Options{
			Mode:     s.Logger.Mode,
			Filename: s.Logger.Filename,
			Verbose:  s.Logger.Verbose || flagVerbose,
		}
		if flagLogFile != "" {
			logOpts.Filename = flagLogFile
		}
		if _, err := logging.Setup(logOpts); err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}
		if flagNoHistory {
			settings.HistoryEnabled = false
		}
		return nil
	},
}

// Global flags
var (
	flagConfigFile string
	flagVerbose    bool
	flagLogFile    string
	flagNoHistory  bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigFile, "config", "", "Settings file (default ./.benchops.yaml or ~/.benchops/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Also write JSON logs to this file (rotated)")
	rootCmd.PersistentFlags().BoolVar(&flagNoHistory, "no-history", false, "Do not record results in the history database")

	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(chartsCmd)
	rootCmd.AddCommand(nightlyCmd)
	rootCmd.AddCommand(loadtestCmd)
	rootCmd.AddCommand(historyCmd)
}

// openHistory opens the benchmark history database when history is enabled.
// Failures are logged and yield nil: history never blocks a run.
func openHistory() *history.Manager {
	if !settings.HistoryEnabled {
		return nil
	}
	m, err := history.NewManager(settings.DatabasePath)
	if err != nil {
		zap.S().Warnf("History disabled: %v", err)
		return nil
	}
	return m
}

// openLoadTestStore is openHistory for load test runs
func openLoadTestStore() *stresstest.Manager {
	if !settings.HistoryEnabled {
		return nil
	}
	m, err := stresstest.NewManager(settings.DatabasePath)
	if err != nil {
		zap.S().Warnf("History disabled: %v", err)
		return nil
	}
	return m
}
