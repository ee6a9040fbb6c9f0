package nightly

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/studiowebux/benchops/internal/config"
	"go.uber.org/zap"
)

// ErrBuildFailed is returned when FailOnFail is set and the overall status is FAIL
var ErrBuildFailed = errors.New("nightly build failed")

// Output file names inside the output directory
const (
	HTMLFile = "nightly_report.html"
	JSONFile = "nightly_report.json"
)

// RunOptions contains options for a nightly report run
type RunOptions struct {
	Sources     Sources
	OutputDir   string
	Title       string
	MetricsFile string // optional Prometheus textfile
	FailOnFail  bool
	Now         func() time.Time
}

// Outcome is what a run collected and decided
type Outcome struct {
	Report     Report
	Evaluation Evaluation
	HTMLPath   string
	JSONPath   string
}

// Run collects every source, evaluates it and writes the HTML and JSON reports.
// An overall FAIL only becomes an error when FailOnFail is set.
func Run(opts RunOptions) (*Outcome, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	report := Collect(opts.Sources, opts.Now())
	eval := Evaluate(report)
	outcome := &Outcome{
		Report:     report,
		Evaluation: eval,
		HTMLPath:   filepath.Join(opts.OutputDir, HTMLFile),
		JSONPath:   filepath.Join(opts.OutputDir, JSONFile),
	}

	if err := config.EnsureDir(opts.OutputDir); err != nil {
		return outcome, err
	}

	zap.S().Info("Generating HTML report...")
	var html bytes.Buffer
	if err := RenderHTML(&html, opts.Title, report, eval); err != nil {
		return outcome, err
	}
	if err := os.WriteFile(outcome.HTMLPath, html.Bytes(), config.FilePermissions); err != nil {
		return outcome, fmt.Errorf("failed to write %s: %w", outcome.HTMLPath, err)
	}

	var data bytes.Buffer
	if err := RenderJSON(&data, report); err != nil {
		return outcome, err
	}
	if err := os.WriteFile(outcome.JSONPath, data.Bytes(), config.FilePermissions); err != nil {
		return outcome, fmt.Errorf("failed to write %s: %w", outcome.JSONPath, err)
	}

	if opts.MetricsFile != "" {
		if err := WriteMetrics(opts.MetricsFile, report, eval); err != nil {
			zap.S().Warnf("Metrics export failed: %v", err)
		}
	}

	zap.S().Info("Nightly report generated successfully!")
	zap.S().Infof("HTML report: %s", outcome.HTMLPath)
	zap.S().Infof("JSON data: %s", outcome.JSONPath)

	if !eval.Passed() {
		zap.S().Warnf("Overall build status: %s", eval.Result())
		if opts.FailOnFail {
			return outcome, ErrBuildFailed
		}
	}
	return outcome, nil
}
