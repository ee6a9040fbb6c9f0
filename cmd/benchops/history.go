package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
	"github.com/studiowebux/benchops/internal/history"
	"github.com/studiowebux/benchops/internal/stresstest"
	"github.com/studiowebux/benchops/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse recorded benchmark comparisons and load tests",
}

var historyBenchmarksCmd = &cobra.Command{
	Use:   "benchmarks",
	Short: "List recent benchmark comparison runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := history.NewManager(settings.DatabasePath)
		if err != nil {
			return err
		}
		defer m.Close()

		runs, err := m.ListBenchmarkRuns(historyLimit)
		if err != nil {
			return err
		}
		return printBenchmarkRuns(cmd.OutOrStdout(), runs)
	},
}

var historyLoadTestsCmd = &cobra.Command{
	Use:   "loadtests",
	Short: "List recent load test runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := stresstest.NewManager(settings.DatabasePath)
		if err != nil {
			return err
		}
		defer m.Close()

		runs, err := m.ListRuns(historyLimit)
		if err != nil {
			return err
		}
		return printLoadTestRuns(cmd.OutOrStdout(), runs)
	},
}

var historyMetricCmd = &cobra.Command{
	Use:   "metric <name>",
	Short: "Show the recorded values of one benchmark",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := history.NewManager(settings.DatabasePath)
		if err != nil {
			return err
		}
		defer m.Close()

		name := args[0]
		points, err := m.MetricHistory(name, historyLimit)
		if err != nil {
			return err
		}
		if len(points) == 0 {
			names, err := m.MetricNames()
			if err != nil {
				return err
			}
			if matches := fuzzy.Find(name, names); len(matches) > 0 {
				return fmt.Errorf("no history for %q (did you mean %q?)", name, matches[0].Str)
			}
			return fmt.Errorf("no history for %q", name)
		}
		return printMetricHistory(cmd.OutOrStdout(), name, points)
	},
}

var historyLimit int

func init() {
	historyCmd.PersistentFlags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of entries (0 for all)")

	historyCmd.AddCommand(historyBenchmarksCmd)
	historyCmd.AddCommand(historyLoadTestsCmd)
	historyCmd.AddCommand(historyMetricCmd)
}

func printBenchmarkRuns(w io.Writer, runs []*history.BenchmarkRun) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No benchmark runs recorded")
		return nil
	}
	ui.NewPrinter(w).Title("Benchmark comparison runs")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tTOTAL\tREGRESSIONS\tIMPROVEMENTS\tSTABLE\tPROMOTED\tCURRENT")
	for _, r := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%t\t%s\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), r.Total,
			r.Regressions, r.Improvements, r.Stable, r.Promoted, r.CurrentFile)
	}
	return tw.Flush()
}

func printLoadTestRuns(w io.Writer, runs []*stresstest.StoredRun) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No load tests recorded")
		return nil
	}
	ui.NewPrinter(w).Title("Load test runs")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tTARGET\tDRIVER\tSUCCESS\tAVG RESPONSE\tPKT/S\tVERDICT")
	for _, r := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d/%d\t%.3fs\t%.1f\t%s\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), r.Target, r.Driver,
			r.Summary.SuccessfulConnections, r.Summary.TotalConnections,
			r.Summary.AvgResponseTime, r.Summary.PacketsPerSecond, r.Verdict)
	}
	return tw.Flush()
}

func printMetricHistory(w io.Writer, name string, points []history.MetricPoint) error {
	ui.NewPrinter(w).Title("History of %s", name)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tDATE\tVALUE\tCHANGE\tCLASS")
	for _, p := range points {
		fmt.Fprintf(tw, "%d\t%s\t%.3f\t%+.1f%%\t%s\n",
			p.RunID, p.Timestamp.Local().Format("2006-01-02 15:04"), p.Value, p.ChangePercent, p.Classification)
	}
	return tw.Flush()
}
