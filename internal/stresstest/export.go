package stresstest

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/studiowebux/benchops/internal/config"
)

// ResultsFile is the JSON document written after a run. Summary fields are
// inlined so existing consumers keep reading the same top-level keys.
type ResultsFile struct {
	RunID       string  `json:"run_id"`
	Target      string  `json:"target"`
	Driver      string  `json:"driver"`
	Verdict     Verdict `json:"verdict"`
	StartedAt   string  `json:"started_at"`
	CompletedAt string  `json:"completed_at"`
	Summary
}

// WriteResultsJSON writes the aggregate results as indented JSON
func WriteResultsJSON(path string, run *RunResult) error {
	doc := ResultsFile{
		RunID:       run.ID,
		Target:      run.Target,
		Driver:      run.Driver,
		Verdict:     run.Verdict,
		StartedAt:   run.StartedAt.UTC().Format(time.RFC3339),
		CompletedAt: run.CompletedAt.UTC().Format(time.RFC3339),
		Summary:     run.Summary,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	if err := os.WriteFile(path, data, config.FilePermissions); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}

type sessionRow struct {
	SessionID       int     `csv:"connection_id"`
	Connected       bool    `csv:"connected"`
	Success         bool    `csv:"success"`
	ConnectTime     float64 `csv:"connect_time_sec"`
	TotalTime       float64 `csv:"total_time_sec"`
	PacketsSent     int     `csv:"packets_sent"`
	PacketsReceived int     `csv:"packets_received"`
	Errors          int     `csv:"errors"`
}

// WriteSessionsCSV writes one row per session
func WriteSessionsCSV(path string, sessions []SessionResult) error {
	rows := make([]*sessionRow, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, &sessionRow{
			SessionID:       s.SessionID,
			Connected:       s.Connected,
			Success:         s.Success,
			ConnectTime:     s.ConnectTime.Seconds(),
			TotalTime:       s.TotalTime.Seconds(),
			PacketsSent:     s.PacketsSent,
			PacketsReceived: s.PacketsReceived,
			Errors:          s.Errors,
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create sessions file: %w", err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return fmt.Errorf("failed to write sessions: %w", err)
	}
	return nil
}

// WriteMetrics writes the run summary as a node_exporter textfile
func WriteMetrics(path string, run *RunResult) error {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	s := run.Summary

	connections := factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "benchops",
		Subsystem: "loadtest",
		Name:      "connections",
		Help:      "Sessions by outcome.",
	}, []string{"result"})
	connections.WithLabelValues("successful").Set(float64(s.SuccessfulConnections))
	connections.WithLabelValues("failed").Set(float64(s.FailedConnections))

	latency := factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "benchops",
		Subsystem: "loadtest",
		Name:      "response_time_seconds",
		Help:      "Session response time of successful sessions.",
	}, []string{"stat"})
	latency.WithLabelValues("avg").Set(s.AvgResponseTime)
	latency.WithLabelValues("p50").Set(s.P50ResponseTime)
	latency.WithLabelValues("p95").Set(s.P95ResponseTime)
	latency.WithLabelValues("p99").Set(s.P99ResponseTime)

	factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "benchops",
		Subsystem: "loadtest",
		Name:      "connect_time_seconds",
		Help:      "Mean connect time of successful sessions.",
	}).Set(s.AvgConnectTime)

	factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "benchops",
		Subsystem: "loadtest",
		Name:      "packets_per_second",
		Help:      "Keep-alive packets sent per second of wall time.",
	}).Set(s.PacketsPerSecond)

	errs := factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "benchops",
		Subsystem: "loadtest",
		Name:      "errors",
		Help:      "Session errors by category.",
	}, []string{"kind"})
	for kind, n := range s.ErrorBreakdown {
		errs.WithLabelValues(kind).Set(float64(n))
	}

	factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "benchops",
		Subsystem: "loadtest",
		Name:      "success_ratio",
		Help:      "Fraction of successful sessions.",
	}).Set(s.SuccessRate())

	factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "benchops",
		Subsystem: "loadtest",
		Name:      "memory_usage_megabytes",
		Help:      "Resident memory of the load tester after the run.",
	}).Set(s.MemoryUsageMB)

	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
