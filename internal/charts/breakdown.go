package charts

import (
	"fmt"
	"strings"

	"github.com/studiowebux/benchops/internal/measurement"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	breakdownRows = 2
	breakdownCols = 3
)

// CategoryBreakdownChart draws one bar subplot per category on a 2x3 grid.
// Categories beyond the sixth are not drawn.
func CategoryBreakdownChart(ms []measurement.Measurement, path string) error {
	groups := GroupByCategory(ms)
	if len(groups) == 0 {
		return fmt.Errorf("category breakdown: %w", ErrNoData)
	}

	plots := make([][]*plot.Plot, breakdownRows)
	for j := range plots {
		plots[j] = make([]*plot.Plot, breakdownCols)
	}

	for i, group := range groups {
		if i >= breakdownRows*breakdownCols {
			break
		}
		p, err := categoryPlot(group)
		if err != nil {
			return fmt.Errorf("category breakdown: %w", err)
		}
		plots[i/breakdownCols][i%breakdownCols] = p
	}

	return saveGrid(plots, 18*vg.Inch, 12*vg.Inch, path)
}

func categoryPlot(group CategoryGroup) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = titleCase(group.Category) + " Benchmarks"
	p.Y.Label.Text = "Value"

	names := make([]string, len(group.Measurements))
	values := make(plotter.Values, len(group.Measurements))
	labels := plotter.XYLabels{}
	for i, m := range group.Measurements {
		names[i] = prettyName(m.Name, group.Category+"_")
		values[i] = m.Value
		labels.XYs = append(labels.XYs, plotter.XY{X: float64(i), Y: m.Value})
		labels.Labels = append(labels.Labels, fmt.Sprintf("%.3f", m.Value))
	}

	bar, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return nil, err
	}
	bar.Color = colorCategory
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

// titleCase turns "tick_rate" into "Tick_Rate"
func titleCase(s string) string {
	upper := true
	var b strings.Builder
	for _, r := range s {
		if upper && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		upper = !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
		b.WriteRune(r)
	}
	return b.String()
}
