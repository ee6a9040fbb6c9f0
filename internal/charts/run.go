// Package charts renders benchmark results as PNG charts plus a markdown
// summary. Every chart is independent: one that has no data is skipped and one
// that fails to render does not stop the others.
package charts

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/studiowebux/benchops/internal/compare"
	"github.com/studiowebux/benchops/internal/config"
	"github.com/studiowebux/benchops/internal/measurement"
	"go.uber.org/zap"
)

// Output file names inside the output directory
const (
	ComparisonFile = "performance_comparison.png"
	BreakdownFile  = "category_breakdown.png"
	TrendsFile     = "performance_trends.png"
	MemoryFile     = "memory_analysis.png"
	SummaryFile    = "summary_report.md"
)

// RunOptions contains options for a chart generation run
type RunOptions struct {
	CurrentPath  string
	BaselinePath string // optional
	OutputDir    string
	Threshold    float64
	Trends       TrendSource // optional recorded history
	Rand         *rand.Rand  // trend simulation, seeded from the clock when nil
	Now          func() time.Time
}

// Result lists what a run produced
type Result struct {
	Generated []string
	Skipped   []string
}

// Run loads the result files and renders every chart into OutputDir.
// A missing or empty current file is fatal; chart failures are joined into
// the returned error after all charts were attempted.
func Run(opts RunOptions) (*Result, error) {
	if opts.Threshold <= 0 {
		opts.Threshold = compare.DefaultThreshold
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(opts.Now().UnixNano()))
	}

	current, err := measurement.Load(opts.CurrentPath)
	if err != nil {
		return nil, err
	}
	if current.Len() == 0 {
		return nil, fmt.Errorf("no current benchmark data found in %s", opts.CurrentPath)
	}
	zap.S().Infof("Loaded %d current benchmarks", current.Len())

	var baseline *measurement.Set
	if opts.BaselinePath != "" {
		baseline, err = measurement.LoadOptional(opts.BaselinePath)
		if err != nil {
			zap.S().Warnf("Ignoring baseline: %v", err)
			baseline = nil
		} else if baseline.Len() > 0 {
			zap.S().Infof("Loaded %d baseline benchmarks", baseline.Len())
		}
	}

	if err := config.EnsureDir(opts.OutputDir); err != nil {
		return nil, err
	}
	out := func(name string) string { return filepath.Join(opts.OutputDir, name) }

	result := &Result{}
	var errs []error
	render := func(name string, fn func(path string) error) {
		zap.S().Infof("Generating %s...", name)
		err := fn(out(name))
		switch {
		case err == nil:
			result.Generated = append(result.Generated, name)
		case errors.Is(err, ErrNoData):
			zap.S().Infof("Skipping %s: %v", name, err)
			result.Skipped = append(result.Skipped, name)
		default:
			zap.S().Errorf("Error generating %s: %v", name, err)
			errs = append(errs, err)
		}
	}

	ms := current.All()
	if baseline.Len() > 0 {
		render(ComparisonFile, func(path string) error {
			return ComparisonChart(current, baseline, opts.Threshold, path)
		})
	} else {
		result.Skipped = append(result.Skipped, ComparisonFile)
	}
	render(BreakdownFile, func(path string) error {
		return CategoryBreakdownChart(ms, path)
	})
	render(TrendsFile, func(path string) error {
		return TrendsChart(ms, opts.Trends, opts.Now(), opts.Rand, path)
	})
	render(MemoryFile, func(path string) error {
		return MemoryAnalysisChart(ms, path)
	})
	render(SummaryFile, func(path string) error {
		summary := RenderSummary(current, baseline, opts.Threshold, opts.Now())
		return os.WriteFile(path, []byte(summary), config.FilePermissions)
	})

	if len(errs) > 0 {
		return result, errors.Join(errs...)
	}
	zap.S().Infof("Charts generated successfully in %s/", opts.OutputDir)
	return result, nil
}
