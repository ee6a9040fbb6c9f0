// Package nightly aggregates the result files produced by the nightly CI
// stages into one report. Collection builds an immutable Report, Evaluate
// derives the statuses and the renderers only read both.
package nightly

import (
	"time"

	"github.com/studiowebux/benchops/internal/measurement"
)

// TestCounts is the pass/fail tally of one test suite
type TestCounts struct {
	Passed int `json:"passed"`
	Failed int `json:"failed"`
	Total  int `json:"total"`
}

func newTestCounts(passed, failed int) TestCounts {
	return TestCounts{Passed: passed, Failed: failed, Total: passed + failed}
}

func (c TestCounts) add(o TestCounts) TestCounts {
	return newTestCounts(c.Passed+o.Passed, c.Failed+o.Failed)
}

// SuccessRate is the pass percentage, 0 for an empty suite
func (c TestCounts) SuccessRate() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Passed) / float64(c.Total) * 100
}

type TestResults struct {
	Unit        TestCounts `json:"unit_tests"`
	Integration TestCounts `json:"integration_tests"`
	Doc         TestCounts `json:"doc_tests"`
}

type PerformanceResults struct {
	Benchmarks []measurement.Measurement `json:"benchmarks"`
}

type CoverageResults struct {
	LineCoverage     float64 `json:"line_coverage"`
	BranchCoverage   float64 `json:"branch_coverage"`
	FunctionCoverage float64 `json:"function_coverage"`
	TotalLines       int     `json:"total_lines"`
	CoveredLines     int     `json:"covered_lines"`
	TotalBranches    int     `json:"total_branches"`
	CoveredBranches  int     `json:"covered_branches"`
	TotalFunctions   int     `json:"total_functions"`
	CoveredFunctions int     `json:"covered_functions"`
}

// Vulnerability is one advisory reported by the dependency audit
type Vulnerability struct {
	ID      string `json:"id"`
	Package string `json:"package"`
	Version string `json:"version,omitempty"`
	Title   string `json:"title,omitempty"`
	URL     string `json:"url,omitempty"`
}

type SecurityResults struct {
	Vulnerabilities  []Vulnerability `json:"vulnerabilities"`
	AuditPassed      bool            `json:"audit_passed"`
	TotalCrates      int             `json:"total_crates"`
	VulnerableCrates int             `json:"vulnerable_crates"`
}

type CompatibilityResults struct {
	MinecraftVersions     map[string]any `json:"minecraft_versions"`
	MigrationTests        TestCounts     `json:"migration_tests"`
	BackwardCompatibility bool           `json:"backward_compatibility"`
}

// Report is everything collected for one nightly run. It is built once by
// Collect and never modified afterwards.
type Report struct {
	Timestamp     time.Time            `json:"timestamp"`
	Tests         TestResults          `json:"test_results"`
	Performance   PerformanceResults   `json:"performance_results"`
	Coverage      CoverageResults      `json:"coverage_results"`
	Security      SecurityResults      `json:"security_results"`
	Compatibility CompatibilityResults `json:"compatibility_results"`
	Problems      []string             `json:"problems,omitempty"`
}

// emptyReport holds the defaults used when a source file is absent
func emptyReport(now time.Time) Report {
	return Report{
		Timestamp:   now,
		Performance: PerformanceResults{Benchmarks: []measurement.Measurement{}},
		Security: SecurityResults{
			Vulnerabilities: []Vulnerability{},
			AuditPassed:     true,
		},
		Compatibility: CompatibilityResults{
			MinecraftVersions:     map[string]any{},
			BackwardCompatibility: true,
		},
	}
}
