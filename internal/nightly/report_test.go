package nightly

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studiowebux/benchops/internal/measurement"
)

func passingReport() Report {
	r := emptyReport(time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC))
	r.Tests = TestResults{
		Unit:        newTestCounts(40, 0),
		Integration: newTestCounts(8, 0),
		Doc:         newTestCounts(5, 0),
	}
	r.Coverage = CoverageResults{LineCoverage: 85, TotalLines: 100, CoveredLines: 85}
	r.Performance.Benchmarks = []measurement.Measurement{{Name: "server_startup_avg", Value: 1, Unit: "seconds", LowerIsBetter: true}}
	return r
}

func TestCoverageStatus(t *testing.T) {
	assert.Equal(t, StatusPass, CoverageStatus(80))
	assert.Equal(t, StatusWarn, CoverageStatus(79.9))
	assert.Equal(t, StatusWarn, CoverageStatus(60))
	assert.Equal(t, StatusFail, CoverageStatus(59.9))
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Report)
		pass   bool
	}{
		{name: "all green", mutate: func(r *Report) {}, pass: true},
		{name: "unit failure", mutate: func(r *Report) { r.Tests.Unit = newTestCounts(39, 1) }, pass: false},
		{name: "integration failure", mutate: func(r *Report) { r.Tests.Integration = newTestCounts(7, 1) }, pass: false},
		{name: "doc failure", mutate: func(r *Report) { r.Tests.Doc = newTestCounts(4, 1) }, pass: false},
		{name: "audit failed", mutate: func(r *Report) { r.Security.AuditPassed = false }, pass: false},
		{name: "backward compatibility broken", mutate: func(r *Report) { r.Compatibility.BackwardCompatibility = false }, pass: false},
		{name: "low coverage does not fail the build", mutate: func(r *Report) { r.Coverage.LineCoverage = 10 }, pass: true},
		{name: "migration failures do not fail the build", mutate: func(r *Report) { r.Compatibility.MigrationTests = newTestCounts(1, 3) }, pass: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := passingReport()
			tt.mutate(&r)
			e := Evaluate(r)
			assert.Equal(t, tt.pass, e.Passed())
		})
	}
}

func TestEvaluate_SectionStatuses(t *testing.T) {
	r := passingReport()
	r.Coverage.LineCoverage = 65
	r.Compatibility.MigrationTests = newTestCounts(1, 3)

	e := Evaluate(r)
	assert.Equal(t, StatusWarn, e.Coverage)
	assert.Equal(t, StatusFail, e.Migration)
	assert.Equal(t, StatusPass, e.Unit)
	assert.Equal(t, "PASS", e.Result())
}

func TestRenderHTML(t *testing.T) {
	r := passingReport()
	r.Tests.Integration = newTestCounts(8, 2)
	r.Security = SecurityResults{
		Vulnerabilities: []Vulnerability{{ID: "RUSTSEC-1", Package: "<script>", Title: "bad"}},
		AuditPassed:     false,
	}
	r.Problems = []string{"coverage: lcov.info: permission denied"}
	e := Evaluate(r)

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, "", r, e))

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)

	assert.Contains(t, doc.Find("title").Text(), DefaultTitle)
	assert.Equal(t, "40/40", strings.TrimSpace(doc.Find("#unit-tests .value").Text()))
	assert.True(t, doc.Find("#integration-tests .value").HasClass("status-fail"))
	assert.Equal(t, "85.0%", strings.TrimSpace(doc.Find("#coverage .value").Text()))
	assert.Equal(t, "1", strings.TrimSpace(doc.Find("#vulnerability-count").Text()))
	assert.Equal(t, "FAIL", strings.TrimSpace(doc.Find("#audit-status").Text()))
	assert.Equal(t, "FAIL", strings.TrimSpace(doc.Find("#overall").Text()))
	assert.True(t, doc.Find("#overall").HasClass("status-fail"))
	assert.Equal(t, 1, doc.Find("#vulnerabilities tr").Length()-1)
	assert.Contains(t, doc.Find("#vulnerabilities").Text(), "<script>", "package names are escaped, not injected")
	assert.Equal(t, 0, doc.Find("#vulnerabilities script").Length())
	assert.Equal(t, "80.0%", strings.TrimSpace(doc.Find("#integration-row td").Last().Text()))
	assert.Equal(t, 1, doc.Find("#problems li").Length())
}

func TestRenderJSON_RawData(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderJSON(&buf, passingReport()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	for _, key := range []string{"timestamp", "test_results", "performance_results", "coverage_results", "security_results", "compatibility_results"} {
		assert.Contains(t, decoded, key)
	}
	unit := decoded["test_results"].(map[string]any)["unit_tests"].(map[string]any)
	assert.EqualValues(t, 40, unit["passed"])
	assert.EqualValues(t, 40, unit["total"])
}

func TestRun_WritesReports(t *testing.T) {
	dir := t.TempDir()
	metrics := filepath.Join(dir, "nightly.prom")

	outcome, err := Run(RunOptions{
		Sources: Sources{
			TestResultsFiles: []string{writeFixture(t, dir, "test_results.json",
				`{"unit_tests": {"passed": 3, "failed": 0}}`)},
			CoverageFile: writeFixture(t, dir, "lcov.info", "LF:10\nLH:7\n"),
		},
		OutputDir:   filepath.Join(dir, "out"),
		MetricsFile: metrics,
	})
	require.NoError(t, err)
	assert.True(t, outcome.Evaluation.Passed())
	assert.Equal(t, StatusWarn, outcome.Evaluation.Coverage)
	assert.FileExists(t, outcome.HTMLPath)
	assert.FileExists(t, outcome.JSONPath)

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), `benchops_nightly_tests{result="passed",suite="unit"} 3`)
	assert.Contains(t, string(data), `benchops_nightly_status{section="overall"} 1`)
}

func TestRun_FailOnFail(t *testing.T) {
	dir := t.TempDir()
	sources := Sources{
		TestResultsFiles: []string{writeFixture(t, dir, "test_results.json",
			`{"unit_tests": {"passed": 3, "failed": 1}}`)},
	}

	outcome, err := Run(RunOptions{Sources: sources, OutputDir: dir})
	require.NoError(t, err, "a failing build is reported, not an error, by default")
	assert.False(t, outcome.Evaluation.Passed())

	_, err = Run(RunOptions{Sources: sources, OutputDir: dir, FailOnFail: true})
	assert.True(t, errors.Is(err, ErrBuildFailed))
}
