package charts

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/studiowebux/benchops/internal/history"
	"github.com/studiowebux/benchops/internal/measurement"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// TrendDays is the number of daily points on the trends chart
const TrendDays = 30

// KeyTrendBenchmarks are the only benchmarks drawn on the trends chart
var KeyTrendBenchmarks = []string{
	"server_startup_avg",
	"packet_processing_ecs_overhead",
	"memory_pool_efficiency",
	"tick_rate_lightweight_impact",
}

// TrendSource provides recorded values for a benchmark, oldest first.
// *history.Manager satisfies it.
type TrendSource interface {
	MetricHistory(name string, limit int) ([]history.MetricPoint, error)
}

// SimulateTrend fabricates days points around value: each point is drawn from
// N(value, 0.1*value) and scaled by a drift rising linearly from 0.95 to 1.05.
// The result is illustrative only.
func SimulateTrend(value float64, days int, rnd *rand.Rand) []float64 {
	points := make([]float64, days)
	sigma := math.Abs(value) * 0.1
	for i := range points {
		drift := 0.95
		if days > 1 {
			drift += 0.1 * float64(i) / float64(days-1)
		}
		points[i] = (value + rnd.NormFloat64()*sigma) * drift
	}
	return points
}

func simulatedXYs(value float64, end time.Time, rnd *rand.Rand) plotter.XYs {
	values := SimulateTrend(value, TrendDays, rnd)
	xys := make(plotter.XYs, len(values))
	for i, v := range values {
		day := end.AddDate(0, 0, i-(TrendDays-1))
		xys[i] = plotter.XY{X: float64(day.Unix()), Y: v}
	}
	return xys
}

func recordedXYs(points []history.MetricPoint) plotter.XYs {
	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i] = plotter.XY{X: float64(pt.Timestamp.Unix()), Y: pt.Value}
	}
	return xys
}

// TrendsChart draws the key benchmarks over the last TrendDays days. Recorded
// history is used when the source has at least two points for a benchmark;
// otherwise the series is simulated from the current value.
func TrendsChart(ms []measurement.Measurement, source TrendSource, end time.Time, rnd *rand.Rand, path string) error {
	allowed := make(map[string]bool, len(KeyTrendBenchmarks))
	for _, name := range KeyTrendBenchmarks {
		allowed[name] = true
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Performance Trends (Last %d Days)", TrendDays)
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Performance Value"
	p.X.Tick.Marker = plot.TimeTicks{Format: "Jan 02"}
	p.Add(plotter.NewGrid())
	rotateXTicks(p)

	series := 0
	for _, m := range ms {
		if !allowed[m.Name] {
			continue
		}

		xys := simulatedXYs(m.Value, end, rnd)
		if source != nil {
			points, err := source.MetricHistory(m.Name, TrendDays)
			if err != nil {
				zap.S().Warnf("history lookup for %s failed: %v", m.Name, err)
			} else if len(points) >= 2 {
				xys = recordedXYs(points)
			}
		}

		line, scatter, err := plotter.NewLinePoints(xys)
		if err != nil {
			return fmt.Errorf("performance trends: %w", err)
		}
		line.Color = plotutil.Color(series)
		scatter.Color = plotutil.Color(series)
		scatter.Radius = vg.Points(1.5)
		p.Add(line, scatter)
		p.Legend.Add(m.Name, line, scatter)
		series++
	}

	if series == 0 {
		return fmt.Errorf("performance trends: %w", ErrNoData)
	}

	p.Legend.Top = true
	if err := p.Save(14*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
