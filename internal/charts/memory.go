package charts

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/studiowebux/benchops/internal/measurement"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Efficiency reference lines, in percent
const (
	efficiencyTarget  = 80.0
	efficiencyWarning = 60.0
)

// memoryBenchmarks returns the measurements whose name mentions memory or pool
func memoryBenchmarks(ms []measurement.Measurement) []measurement.Measurement {
	var out []measurement.Measurement
	for _, m := range ms {
		lower := strings.ToLower(m.Name)
		if strings.Contains(lower, "memory") || strings.Contains(lower, "pool") {
			out = append(out, m)
		}
	}
	return out
}

// MemoryAnalysisChart draws efficiency metrics (as %) on the left and
// allocation timings measured in seconds (as ms) on the right.
func MemoryAnalysisChart(ms []measurement.Measurement, path string) error {
	memory := memoryBenchmarks(ms)
	if len(memory) == 0 {
		return fmt.Errorf("memory analysis: %w", ErrNoData)
	}

	var efficiency, allocation []measurement.Measurement
	for _, m := range memory {
		lower := strings.ToLower(m.Name)
		if strings.Contains(lower, "efficiency") {
			efficiency = append(efficiency, m)
		}
		if strings.Contains(lower, "allocation") && strings.Contains(m.Unit, "seconds") {
			allocation = append(allocation, m)
		}
	}
	if len(efficiency) == 0 && len(allocation) == 0 {
		return fmt.Errorf("memory analysis: %w", ErrNoData)
	}

	var left, right *plot.Plot
	var err error
	if len(efficiency) > 0 {
		if left, err = efficiencyPlot(efficiency); err != nil {
			return fmt.Errorf("memory analysis: %w", err)
		}
	}
	if len(allocation) > 0 {
		if right, err = allocationPlot(allocation); err != nil {
			return fmt.Errorf("memory analysis: %w", err)
		}
	}

	return saveGrid([][]*plot.Plot{{left, right}}, 16*vg.Inch, 6*vg.Inch, path)
}

func efficiencyPlot(ms []measurement.Measurement) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Memory Pool Efficiency"
	p.Y.Label.Text = "Efficiency (%)"
	p.Y.Min = 0
	p.Y.Max = 100

	names, values, labels := scaledBars(ms, 100, "%.1f%%")
	bar, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return nil, err
	}
	bar.Color = colorSkyBlue
	bar.LineStyle.Width = 0
	p.Add(bar)

	n := float64(len(ms))
	for _, ref := range []struct {
		y     float64
		label string
		stroke color.Color
	}{
		{efficiencyTarget, "Target (80%)", colorImprovement},
		{efficiencyWarning, "Warning (60%)", colorStable},
	} {
		line, err := plotter.NewLine(plotter.XYs{{X: -0.5, Y: ref.y}, {X: n - 0.5, Y: ref.y}})
		if err != nil {
			return nil, err
		}
		line.LineStyle = dashed(vg.Points(1))
		line.Color = ref.stroke
		p.Add(line)
		p.Legend.Add(ref.label, line)
	}

	valueLabels, err := plotter.NewLabels(labels)
	if err != nil {
		return nil, err
	}
	p.Add(valueLabels)

	p.NominalX(names...)
	rotateXTicks(p)
	p.Legend.Top = true
	return p, nil
}

func allocationPlot(ms []measurement.Measurement) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Memory Allocation Performance"
	p.Y.Label.Text = "Time (ms)"

	names, values, labels := scaledBars(ms, 1000, "%.2fms")
	bar, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return nil, err
	}
	bar.Color = colorLightCoral
	bar.LineStyle.Width = 0
	p.Add(bar)

	valueLabels, err := plotter.NewLabels(labels)
	if err != nil {
		return nil, err
	}
	p.Add(valueLabels)

	p.NominalX(names...)
	rotateXTicks(p)
	return p, nil
}

func scaledBars(ms []measurement.Measurement, scale float64, format string) ([]string, plotter.Values, plotter.XYLabels) {
	names := make([]string, len(ms))
	values := make(plotter.Values, len(ms))
	labels := plotter.XYLabels{}
	for i, m := range ms {
		names[i] = prettyName(m.Name, "memory_")
		values[i] = m.Value * scale
		labels.XYs = append(labels.XYs, plotter.XY{X: float64(i), Y: values[i]})
		labels.Labels = append(labels.Labels, fmt.Sprintf(format, values[i]))
	}
	return names, values, labels
}
