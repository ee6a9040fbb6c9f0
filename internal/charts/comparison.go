package charts

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/studiowebux/benchops/internal/compare"
	"github.com/studiowebux/benchops/internal/measurement"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

type changeBar struct {
	name   string
	change float64 // percent
	class  compare.Classification
}

// changeBars pairs current and baseline by name, sorted by change ascending.
// Infinite changes (zero baselines) cannot be drawn and are left out.
func changeBars(current, baseline *measurement.Set, threshold float64) []changeBar {
	var bars []changeBar
	for _, cur := range current.All() {
		base, ok := baseline.Get(cur.Name)
		if !ok {
			continue
		}
		change := compare.ChangeFraction(cur.Value, base.Value)
		if math.IsInf(change, 0) {
			zap.S().Debugf("%s: zero baseline, not charted", cur.Name)
			continue
		}
		bars = append(bars, changeBar{
			name:   cur.Name,
			change: change * 100,
			class:  compare.Classify(change, cur.LowerIsBetter, threshold),
		})
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].change < bars[j].change })
	return bars
}

func classColor(c compare.Classification) color.Color {
	switch c {
	case compare.Improvement:
		return colorImprovement
	case compare.Regression:
		return colorRegression
	}
	return colorStable
}

// ComparisonChart draws one horizontal bar per benchmark present in both sets,
// coloured green (improvement), orange (stable) or red (regression).
func ComparisonChart(current, baseline *measurement.Set, threshold float64, path string) error {
	bars := changeBars(current, baseline, threshold)
	if len(bars) == 0 {
		return fmt.Errorf("performance comparison: %w", ErrNoData)
	}

	p := plot.New()
	p.Title.Text = "Performance Comparison: Current vs Baseline"
	p.X.Label.Text = "Performance Change (%)"
	p.Add(plotter.NewGrid())

	names := make([]string, len(bars))
	labels := plotter.XYLabels{}
	for i, b := range bars {
		names[i] = b.name
		bar, err := plotter.NewBarChart(plotter.Values{b.change}, vg.Points(10))
		if err != nil {
			return fmt.Errorf("performance comparison: %w", err)
		}
		bar.Horizontal = true
		bar.XMin = float64(i)
		bar.Color = classColor(b.class)
		bar.LineStyle.Width = 0
		p.Add(bar)

		labels.XYs = append(labels.XYs, plotter.XY{X: b.change, Y: float64(i)})
		labels.Labels = append(labels.Labels, fmt.Sprintf("%.1f%%", b.change))
	}
	p.NominalY(names...)

	limit := threshold * 100
	n := float64(len(bars))
	zero, err := plotter.NewLine(plotter.XYs{{X: 0, Y: -0.5}, {X: 0, Y: n - 0.5}})
	if err != nil {
		return fmt.Errorf("performance comparison: %w", err)
	}
	zero.Color = colorRGBA(0, 0, 0, 80)
	p.Add(zero)

	for _, x := range []float64{limit, -limit} {
		line, err := plotter.NewLine(plotter.XYs{{X: x, Y: -0.5}, {X: x, Y: n - 0.5}})
		if err != nil {
			return fmt.Errorf("performance comparison: %w", err)
		}
		line.LineStyle = dashed(vg.Points(1))
		line.Color = colorThreshold
		p.Add(line)
		if x > 0 {
			p.Legend.Add(fmt.Sprintf("%.0f%% threshold", limit), line)
		}
	}

	valueLabels, err := plotter.NewLabels(labels)
	if err != nil {
		return fmt.Errorf("performance comparison: %w", err)
	}
	p.Add(valueLabels)
	p.Legend.Top = true

	height := vg.Length(math.Max(4, 0.3*n)) * vg.Inch
	if err := p.Save(10*vg.Inch, height, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
