package stresstest

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/studiowebux/benchops/internal/config"
	"go.uber.org/zap"
)

// Store persists finished runs; *Manager satisfies it
type Store interface {
	SaveRun(run *RunResult) (int64, error)
}

// RunOptions contains options for a load test invocation
type RunOptions struct {
	Config      Config
	Driver      Driver // defaults to NewDriver(Config)
	ResultsPath string
	ReportPath  string
	SessionsCSV string    // optional per-session export
	MetricsFile string    // optional Prometheus textfile
	Store       Store     // optional history store
	Out         io.Writer // report echo, defaults to stdout
}

// Run executes the load test and writes every output. A success rate below
// WarningThreshold returns ErrBelowThreshold together with the result.
func Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	driver := opts.Driver
	if driver == nil {
		d, err := NewDriver(opts.Config)
		if err != nil {
			return nil, err
		}
		driver = d
	}

	executor, err := NewExecutor(opts.Config, driver)
	if err != nil {
		return nil, err
	}

	run, err := executor.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("load test failed: %w", err)
	}

	report := RenderReport(run)
	fmt.Fprintln(opts.Out, report)

	if opts.ResultsPath != "" {
		if err := WriteResultsJSON(opts.ResultsPath, run); err != nil {
			return run, err
		}
		zap.S().Infof("Results saved to %s", opts.ResultsPath)
	}
	if opts.ReportPath != "" {
		if err := os.WriteFile(opts.ReportPath, []byte(report), config.FilePermissions); err != nil {
			return run, fmt.Errorf("failed to write report: %w", err)
		}
		zap.S().Infof("Report saved to %s", opts.ReportPath)
	}
	if opts.SessionsCSV != "" {
		if err := WriteSessionsCSV(opts.SessionsCSV, run.Sessions); err != nil {
			return run, err
		}
	}
	if opts.MetricsFile != "" {
		if err := WriteMetrics(opts.MetricsFile, run); err != nil {
			zap.S().Warnf("Metrics export failed: %v", err)
		}
	}
	if opts.Store != nil {
		if _, err := opts.Store.SaveRun(run); err != nil {
			zap.S().Warnf("Failed to record load test history: %v", err)
		}
	}

	if run.Summary.ExitFailed() {
		return run, fmt.Errorf("%w: %.1f%% success rate", ErrBelowThreshold, run.Summary.SuccessRate()*100)
	}
	return run, nil
}
