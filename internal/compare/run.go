package compare

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/studiowebux/benchops/internal/config"
	"github.com/studiowebux/benchops/internal/history"
	"github.com/studiowebux/benchops/internal/measurement"
	"go.uber.org/zap"
)

// ErrRegressions is returned when regressions were found and the baseline was not promoted
var ErrRegressions = errors.New("performance regressions detected")

// Recorder stores comparison runs; *history.Manager satisfies it
type Recorder interface {
	SaveBenchmarkRun(run *history.BenchmarkRun, records []history.ComparisonRecord) error
}

// RunOptions contains options for a comparator run
type RunOptions struct {
	CurrentPath    string
	BaselinePath   string
	ReportPath     string
	Threshold      float64
	UpdateBaseline bool
	XLSXPath       string    // optional spreadsheet export
	Recorder       Recorder  // optional history store
	Out            io.Writer // report echo, defaults to stdout
}

// Outcome describes what a run did
type Outcome struct {
	Bootstrapped bool
	Promoted     bool
	Comparisons  []Comparison
	Summary      Summary
}

// Run loads both result sets, compares them, writes the report and handles
// baseline bootstrap/promotion. Regressions without promotion return ErrRegressions.
func Run(opts RunOptions) (*Outcome, error) {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	current, err := measurement.Load(opts.CurrentPath)
	if err != nil {
		return nil, err
	}
	baseline, err := measurement.LoadOptional(opts.BaselinePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load baseline: %w", err)
	}

	if baseline.Len() == 0 {
		zap.S().Info("No baseline found. Saving current results as baseline.")
		if err := PromoteBaseline(opts.CurrentPath, opts.BaselinePath); err != nil {
			return nil, err
		}
		return &Outcome{Bootstrapped: true, Promoted: true}, nil
	}

	comparisons := Compare(current, baseline, opts.Threshold)
	outcome := &Outcome{Comparisons: comparisons, Summary: Summarize(comparisons)}

	report := RenderMarkdown(comparisons)
	fmt.Fprintln(opts.Out, report)

	if err := config.EnsureDir(filepath.Dir(opts.ReportPath)); err != nil {
		return outcome, err
	}
	if err := os.WriteFile(opts.ReportPath, []byte(report), config.FilePermissions); err != nil {
		return outcome, fmt.Errorf("failed to write report: %w", err)
	}

	if opts.XLSXPath != "" {
		if err := ExportXLSX(opts.XLSXPath, comparisons); err != nil {
			zap.S().Warnf("Spreadsheet export failed: %v", err)
		}
	}

	if outcome.Summary.Regressions > 0 {
		zap.S().Errorf("Found %d performance regressions!", outcome.Summary.Regressions)
		if !opts.UpdateBaseline {
			record(opts, outcome)
			return outcome, fmt.Errorf("%w: %d benchmark(s)", ErrRegressions, outcome.Summary.Regressions)
		}
	}

	if opts.UpdateBaseline {
		if err := PromoteBaseline(opts.CurrentPath, opts.BaselinePath); err != nil {
			record(opts, outcome)
			return outcome, err
		}
		outcome.Promoted = true
	}

	record(opts, outcome)
	zap.S().Info("Benchmark comparison completed successfully")
	return outcome, nil
}

func record(opts RunOptions, outcome *Outcome) {
	if opts.Recorder == nil {
		return
	}
	run := &history.BenchmarkRun{
		StartedAt:    time.Now(),
		CurrentFile:  opts.CurrentPath,
		BaselineFile: opts.BaselinePath,
		Threshold:    opts.Threshold,
		Total:        outcome.Summary.Total,
		Regressions:  outcome.Summary.Regressions,
		Improvements: outcome.Summary.Improvements,
		Stable:       outcome.Summary.Stable,
		Promoted:     outcome.Promoted,
	}
	if err := opts.Recorder.SaveBenchmarkRun(run, Records(outcome.Comparisons)); err != nil {
		zap.S().Warnf("Failed to record comparison history: %v", err)
	}
}
