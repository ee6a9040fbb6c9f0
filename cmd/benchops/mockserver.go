package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/studiowebux/benchops/internal/mock"
	"go.uber.org/zap"
)

var mockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Serve a stand-in target for local load test runs",
	Long: `Serve the /health, /packet and /ws endpoints the load test drivers use.
Latency and failures can be injected to rehearse WARNING and FAIL verdicts.

Examples:
  benchops mock-server --port 8080
  benchops mock-server --delay 20ms --fail-every 10
  benchops mock-server --config mock.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := &mock.Config{}
		if mockConfigFile != "" {
			loaded, err := mock.LoadConfig(mockConfigFile)
			if err != nil {
				return err
			}
			cfg = loaded
		}
		f := cmd.Flags()
		if f.Changed("host") || cfg.Host == "" {
			cfg.Host = mockHost
		}
		if f.Changed("port") || cfg.Port == 0 {
			cfg.Port = mockPort
		}
		if f.Changed("delay") {
			cfg.Delay = mockDelay
		}
		if f.Changed("fail-every") {
			cfg.FailEvery = mockFailEvery
		}
		if f.Changed("log-requests") {
			cfg.Logging = mockLogRequests
		}

		srv := mock.NewServer(cfg)
		if err := srv.Start(); err != nil {
			return err
		}
		<-cmd.Context().Done()

		stats := srv.Stats()
		zap.S().Infof("Served %d health checks, %d packets (%d failed), %d websockets",
			stats.HealthChecks, stats.Packets, stats.FailedPackets, stats.WebSockets)
		for _, l := range srv.GetLogs() {
			zap.S().Debugf("%s %s %s -> %d (%s)", l.Timestamp.Format(time.RFC3339), l.Method, l.Path, l.Status, l.Duration)
		}
		return srv.Stop()
	},
}

var (
	mockConfigFile  string
	mockHost        string
	mockPort        int
	mockDelay       time.Duration
	mockFailEvery   int
	mockLogRequests bool
)

func init() {
	f := mockServerCmd.Flags()
	f.StringVar(&mockConfigFile, "config-file", "", "YAML file with the server settings")
	f.StringVar(&mockHost, "host", "localhost", "Listen host")
	f.IntVar(&mockPort, "port", 8080, "Listen port")
	f.DurationVar(&mockDelay, "delay", 0, "Latency added to every keep-alive")
	f.IntVar(&mockFailEvery, "fail-every", 0, "Answer every n-th packet with 500")
	f.BoolVar(&mockLogRequests, "log-requests", false, "Keep a log of recent requests")

	rootCmd.AddCommand(mockServerCmd)
}
