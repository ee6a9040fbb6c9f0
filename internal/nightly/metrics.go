package nightly

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func statusValue(s Status) float64 {
	switch s {
	case StatusPass:
		return 1
	case StatusWarn:
		return 0.5
	}
	return 0
}

// WriteMetrics writes the report as a node_exporter textfile
func WriteMetrics(path string, r Report, e Evaluation) error {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	tests := factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "benchops",
		Subsystem: "nightly",
		Name:      "tests",
		Help:      "Test counts by suite and result.",
	}, []string{"suite", "result"})
	for suite, c := range map[string]TestCounts{
		"unit":        r.Tests.Unit,
		"integration": r.Tests.Integration,
		"doc":         r.Tests.Doc,
		"migration":   r.Compatibility.MigrationTests,
	} {
		tests.WithLabelValues(suite, "passed").Set(float64(c.Passed))
		tests.WithLabelValues(suite, "failed").Set(float64(c.Failed))
	}

	coverage := factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "benchops",
		Subsystem: "nightly",
		Name:      "coverage_percent",
		Help:      "Code coverage percentage by kind.",
	}, []string{"kind"})
	coverage.WithLabelValues("line").Set(r.Coverage.LineCoverage)
	coverage.WithLabelValues("branch").Set(r.Coverage.BranchCoverage)
	coverage.WithLabelValues("function").Set(r.Coverage.FunctionCoverage)

	factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "benchops",
		Subsystem: "nightly",
		Name:      "vulnerabilities",
		Help:      "Number of vulnerabilities reported by the dependency audit.",
	}).Set(float64(len(r.Security.Vulnerabilities)))

	factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "benchops",
		Subsystem: "nightly",
		Name:      "benchmarks",
		Help:      "Number of benchmarks in the nightly run.",
	}).Set(float64(len(r.Performance.Benchmarks)))

	status := factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "benchops",
		Subsystem: "nightly",
		Name:      "status",
		Help:      "Section status: 1 pass, 0.5 warn, 0 fail.",
	}, []string{"section"})
	for section, s := range map[string]Status{
		"unit_tests":             e.Unit,
		"integration_tests":      e.Integration,
		"doc_tests":              e.Doc,
		"coverage":               e.Coverage,
		"security":               e.Security,
		"migration_tests":        e.Migration,
		"backward_compatibility": e.Compatibility,
		"overall":                e.Overall,
	} {
		status.WithLabelValues(section).Set(statusValue(s))
	}

	factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "benchops",
		Subsystem: "nightly",
		Name:      "timestamp_seconds",
		Help:      "Unix time the report was generated.",
	}).Set(float64(r.Timestamp.Unix()))

	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
