package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/studiowebux/benchops/internal/stresstest"
	"github.com/studiowebux/benchops/internal/ui"
)

var loadtestCmd = &cobra.Command{
	Use:   "loadtest",
	Short: "Load test the server with concurrent client sessions",
	Long: `Open many concurrent client sessions against the server, send keep-alives
for the test duration and report connection success, latency and throughput.

The run exits with status 1 when fewer than 80% of sessions succeed.

Examples:
  benchops loadtest --connections 100 --duration 60s
  benchops loadtest --host 10.0.0.5 --http-port 8080 --driver websocket
  benchops loadtest --sessions-csv sessions.csv --metrics-file loadtest.prom`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLoadTest(cmd)
	},
}

var (
	loadHost        string
	loadPort        int
	loadHTTPPort    int
	loadConnections int
	loadDuration    string
	loadDriver      string
	loadOutput      string
	loadReport      string
	loadSessionsCSV string
	loadMetricsFile string
)

func init() {
	f := loadtestCmd.Flags()
	f.StringVar(&loadHost, "host", "", "Server host (default from settings)")
	f.IntVar(&loadPort, "port", 0, "Server game port reported as the target (default from settings)")
	f.IntVar(&loadHTTPPort, "http-port", 0, "Port the http/websocket drivers connect to (default from settings)")
	f.IntVar(&loadConnections, "connections", 0, "Number of concurrent connections (default from settings)")
	f.StringVar(&loadDuration, "duration", "", "Test duration, e.g. 60s or 60 (default from settings)")
	f.StringVar(&loadDriver, "driver", "", "Session driver: http or websocket (default from settings)")
	f.StringVar(&loadOutput, "output", "", "Results JSON file (default from settings)")
	f.StringVar(&loadReport, "report", "", "Markdown report file (default from settings)")
	f.StringVar(&loadSessionsCSV, "sessions-csv", "", "Also write one CSV row per session")
	f.StringVar(&loadMetricsFile, "metrics-file", "", "Write a Prometheus textfile with the summary")
}

func runLoadTest(cmd *cobra.Command) error {
	s := settings.LoadTest
	cfg := stresstest.DefaultConfig()
	cfg.Host = s.Host
	cfg.Port = s.Port
	cfg.HTTPPort = s.HTTPPort
	cfg.Connections = s.Connections
	cfg.Duration = s.Duration
	cfg.RequestTimeout = s.RequestTimeout
	cfg.Driver = s.Driver

	if loadHost != "" {
		cfg.Host = loadHost
	}
	if loadPort > 0 {
		cfg.Port = loadPort
	}
	if loadHTTPPort > 0 {
		cfg.HTTPPort = loadHTTPPort
	}
	if loadConnections > 0 {
		cfg.Connections = loadConnections
	}
	if loadDuration != "" {
		d, err := parseSeconds(loadDuration)
		if err != nil {
			return err
		}
		cfg.Duration = d
	}
	if loadDriver != "" {
		cfg.Driver = loadDriver
	}

	opts := stresstest.RunOptions{
		Config:      cfg,
		ResultsPath: s.ResultsFile,
		ReportPath:  s.ReportFile,
		SessionsCSV: loadSessionsCSV,
		MetricsFile: loadMetricsFile,
		Out:         cmd.OutOrStdout(),
	}
	if loadOutput != "" {
		opts.ResultsPath = loadOutput
	}
	if loadReport != "" {
		opts.ReportPath = loadReport
	}
	if store := openLoadTestStore(); store != nil {
		defer store.Close()
		opts.Store = store
	}

	run, err := stresstest.Run(cmd.Context(), opts)
	if run != nil {
		out := ui.NewPrinter(cmd.OutOrStdout())
		rate := run.Summary.SuccessRate() * 100
		if run.Summary.ExitFailed() {
			out.Error("❌ Load test failed with %.1f%% success rate", rate)
		} else {
			out.Success("✅ Load test passed with %.1f%% success rate", rate)
		}
	}
	return err
}

// parseSeconds accepts a Go duration ("90s", "2m") or a bare number of seconds
func parseSeconds(v string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", v, err)
	}
	return d, nil
}
