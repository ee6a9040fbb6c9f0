package nightly

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/studiowebux/benchops/internal/measurement"
	"go.uber.org/zap"
)

// Sources names the result files of one nightly run. Every file is optional.
type Sources struct {
	TestResultsFiles   []string
	BenchmarkFile      string
	CoverageFile       string
	SecurityAuditFile  string
	CompatibilityFiles []string
}

// collector accumulates problems while the report is assembled
type collector struct {
	problems []string
}

func (c *collector) problem(source, path string, err error) {
	zap.S().Errorf("Error reading %s file %s: %v", source, path, err)
	c.problems = append(c.problems, fmt.Sprintf("%s: %s: %v", source, path, err))
}

func missing(source, path string) {
	zap.S().Warnf("No %s file found (%s), using defaults", source, path)
}

// Collect reads every source and returns the assembled report. Absent files
// leave their section at its defaults; unreadable or malformed files are
// logged, listed in Report.Problems and otherwise ignored.
func Collect(src Sources, now time.Time) Report {
	r := emptyReport(now)
	c := &collector{}

	zap.S().Info("Collecting test results...")
	tests, path, err := collectTests(src.TestResultsFiles)
	switch {
	case errors.Is(err, os.ErrNotExist) && path == "":
		missing("test results", fmt.Sprint(src.TestResultsFiles))
	case err != nil:
		c.problem("test results", path, err)
	default:
		r.Tests = tests
	}

	zap.S().Info("Collecting performance results...")
	if src.BenchmarkFile != "" {
		set, err := measurement.LoadOptional(src.BenchmarkFile)
		if err != nil {
			c.problem("benchmark", src.BenchmarkFile, err)
		} else {
			r.Performance.Benchmarks = append(r.Performance.Benchmarks, set.All()...)
		}
	}

	zap.S().Info("Collecting coverage results...")
	if data, ok := c.read("coverage", src.CoverageFile); ok {
		coverage, err := ParseLCOV(data)
		if err != nil {
			c.problem("coverage", src.CoverageFile, err)
		} else {
			r.Coverage = coverage
		}
	}

	zap.S().Info("Collecting security results...")
	if data, ok := c.read("security audit", src.SecurityAuditFile); ok {
		security, err := ParseAudit(data)
		if err != nil {
			c.problem("security audit", src.SecurityAuditFile, err)
		} else {
			r.Security = security
		}
	}

	zap.S().Info("Collecting compatibility results...")
	for _, path := range src.CompatibilityFiles {
		data, ok := c.read("compatibility", path)
		if !ok {
			continue
		}
		f, err := parseCompatibility(data)
		if err != nil {
			c.problem("compatibility", path, err)
			continue
		}
		r.Compatibility = f.merge(r.Compatibility)
	}

	r.Problems = c.problems
	return r
}

// read returns the file content, or false when it is absent or unreadable
func (c *collector) read(source, path string) ([]byte, bool) {
	if path == "" {
		return nil, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			missing(source, path)
		} else {
			c.problem(source, path, err)
		}
		return nil, false
	}
	return data, true
}
