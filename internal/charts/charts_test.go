package charts

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studiowebux/benchops/internal/history"
	"github.com/studiowebux/benchops/internal/measurement"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"memory_pool_efficiency", CategoryMemory},
		{"chunk_allocation_time", CategoryMemory},
		{"packet_processing_ecs_overhead", CategoryNetwork},
		{"network_roundtrip", CategoryNetwork},
		{"ecs_query_speed", CategoryECS},
		{"entity_spawn_rate", CategoryECS},
		{"component_insert", CategoryECS},
		{"plugin_load_time", CategoryPlugin},
		{"tick_rate_lightweight_impact", CategoryTickRate},
		{"sustained_tick_rate_with_plugins", CategoryPlugin},
		{"server_startup_avg", CategoryServer},
		{"cold_startup", CategoryServer},
		{"world_save_time", CategoryGeneral},
		{"Memory_Packet_Pool", CategoryMemory},
		{"ENTITY_TICK", CategoryECS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.name))
		})
	}
}

func TestGroupByCategory_FirstSeenOrder(t *testing.T) {
	groups := GroupByCategory([]measurement.Measurement{
		{Name: "server_startup_avg"},
		{Name: "memory_pool_efficiency"},
		{Name: "server_shutdown"},
		{Name: "misc"},
	})

	require.Len(t, groups, 3)
	assert.Equal(t, CategoryServer, groups[0].Category)
	assert.Len(t, groups[0].Measurements, 2)
	assert.Equal(t, CategoryMemory, groups[1].Category)
	assert.Equal(t, CategoryGeneral, groups[2].Category)
}

func TestSimulateTrend(t *testing.T) {
	a := SimulateTrend(10, TrendDays, rand.New(rand.NewSource(42)))
	b := SimulateTrend(10, TrendDays, rand.New(rand.NewSource(42)))
	require.Len(t, a, TrendDays)
	assert.Equal(t, a, b, "same seed must give the same series")

	zero := SimulateTrend(0, 5, rand.New(rand.NewSource(1)))
	assert.Equal(t, []float64{0, 0, 0, 0, 0}, zero)
}

func TestSimulateTrend_Drift(t *testing.T) {
	// a zero-noise source is not available, so average many runs instead
	rnd := rand.New(rand.NewSource(7))
	var first, last float64
	const runs = 2000
	for i := 0; i < runs; i++ {
		pts := SimulateTrend(100, TrendDays, rnd)
		first += pts[0]
		last += pts[TrendDays-1]
	}
	assert.InDelta(t, 95, first/runs, 1.5)
	assert.InDelta(t, 105, last/runs, 1.5)
}

func TestRenderSummary(t *testing.T) {
	current := measurement.NewSet(
		measurement.Measurement{Name: "server_startup_avg", Value: 1.2, Unit: "seconds", LowerIsBetter: true},
		measurement.Measurement{Name: "memory_pool_efficiency", Value: 0.9, Unit: "ratio", LowerIsBetter: false},
		measurement.Measurement{Name: "tick_rate_lightweight_impact", Value: 0.5, Unit: "ms", LowerIsBetter: true},
		measurement.Measurement{Name: "zero_based", Value: 3, Unit: "ms", LowerIsBetter: true},
	)
	baseline := measurement.NewSet(
		measurement.Measurement{Name: "server_startup_avg", Value: 1.0, Unit: "seconds", LowerIsBetter: true},
		measurement.Measurement{Name: "memory_pool_efficiency", Value: 0.8, Unit: "ratio", LowerIsBetter: false},
		measurement.Measurement{Name: "tick_rate_lightweight_impact", Value: 0.5, Unit: "ms", LowerIsBetter: true},
		measurement.Measurement{Name: "zero_based", Value: 0, Unit: "ms", LowerIsBetter: true},
	)
	generated := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

	out := RenderSummary(current, baseline, 0.05, generated)

	assert.Contains(t, out, "# Benchmark Summary Report")
	assert.Contains(t, out, "Generated: 2025-03-04 05:06:07")
	assert.Contains(t, out, "Total benchmarks: 4")
	assert.Contains(t, out, "Baseline benchmarks: 4")
	assert.Contains(t, out, "- Regressions: 1\n- Improvements: 1\n- Stable: 1\n")
	assert.Contains(t, out, "- **server_startup_avg**: 1.200 seconds (+20.0% vs baseline)")
	assert.Contains(t, out, "- **memory_pool_efficiency**: 0.900 ratio (+12.5% vs baseline)")
	assert.NotContains(t, out, "sustained_tick_rate_with_plugins")
}

func TestRenderSummary_NoBaseline(t *testing.T) {
	current := measurement.NewSet(
		measurement.Measurement{Name: "sustained_tick_rate_with_plugins", Value: 19.87, Unit: "tps", LowerIsBetter: false},
	)

	out := RenderSummary(current, nil, 0.05, time.Now())

	assert.NotContains(t, out, "Performance Changes")
	assert.Contains(t, out, "- **sustained_tick_rate_with_plugins**: 19.870 tps\n")
}

const chartsCurrent = `[
  {"name": "server_startup_avg", "value": 1.2, "unit": "seconds", "lower_is_better": true},
  {"name": "packet_processing_ecs_overhead", "value": 0.002, "unit": "seconds", "lower_is_better": true},
  {"name": "memory_pool_efficiency", "value": 0.85, "unit": "ratio", "lower_is_better": false},
  {"name": "memory_allocation_time", "value": 0.0004, "unit": "seconds", "lower_is_better": true},
  {"name": "tick_rate_lightweight_impact", "value": 0.01, "unit": "seconds", "lower_is_better": true},
  {"name": "plugin_load_time", "value": 0.3, "unit": "seconds", "lower_is_better": true},
  {"name": "entity_spawn_rate", "value": 5000, "unit": "ops", "lower_is_better": false},
  {"name": "world_save_time", "value": 2.5, "unit": "seconds", "lower_is_better": true}
]`

const chartsBaseline = `{"benchmarks": [
  {"name": "server_startup_avg", "value": 1.0, "unit": "seconds", "lower_is_better": true},
  {"name": "memory_pool_efficiency", "value": 0.80, "unit": "ratio", "lower_is_better": false},
  {"name": "plugin_load_time", "value": 0.3, "unit": "seconds", "lower_is_better": true}
]}`

func isPNG(t *testing.T, path string) bool {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return len(data) > 8 && string(data[1:4]) == "PNG"
}

func TestRun_AllCharts(t *testing.T) {
	dir := t.TempDir()
	current := filepath.Join(dir, "current.json")
	baseline := filepath.Join(dir, "baseline.json")
	require.NoError(t, os.WriteFile(current, []byte(chartsCurrent), 0644))
	require.NoError(t, os.WriteFile(baseline, []byte(chartsBaseline), 0644))
	outDir := filepath.Join(dir, "charts")

	result, err := Run(RunOptions{
		CurrentPath:  current,
		BaselinePath: baseline,
		OutputDir:    outDir,
		Rand:         rand.New(rand.NewSource(1)),
		Now:          func() time.Time { return time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{ComparisonFile, BreakdownFile, TrendsFile, MemoryFile, SummaryFile}, result.Generated)
	assert.Empty(t, result.Skipped)

	for _, name := range []string{ComparisonFile, BreakdownFile, TrendsFile, MemoryFile} {
		assert.True(t, isPNG(t, filepath.Join(outDir, name)), name)
	}

	summary, err := os.ReadFile(filepath.Join(outDir, SummaryFile))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "Generated: 2025-01-31 12:00:00")
	assert.Contains(t, string(summary), "- Regressions: 1\n- Improvements: 1\n- Stable: 1\n")
}

func TestRun_SkipsChartsWithoutData(t *testing.T) {
	dir := t.TempDir()
	current := filepath.Join(dir, "current.json")
	require.NoError(t, os.WriteFile(current,
		[]byte(`[{"name": "world_save_time", "value": 2.5, "unit": "seconds"}]`), 0644))

	result, err := Run(RunOptions{
		CurrentPath: current,
		OutputDir:   filepath.Join(dir, "out"),
		Rand:        rand.New(rand.NewSource(1)),
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{BreakdownFile, SummaryFile}, result.Generated)
	assert.ElementsMatch(t, []string{ComparisonFile, TrendsFile, MemoryFile}, result.Skipped)
}

func TestRun_MissingCurrentIsFatal(t *testing.T) {
	dir := t.TempDir()

	_, err := Run(RunOptions{
		CurrentPath: filepath.Join(dir, "missing.json"),
		OutputDir:   dir,
	})
	require.Error(t, err)
}

func TestRun_EmptyCurrentIsFatal(t *testing.T) {
	dir := t.TempDir()
	current := filepath.Join(dir, "current.json")
	require.NoError(t, os.WriteFile(current, []byte(`[]`), 0644))

	_, err := Run(RunOptions{CurrentPath: current, OutputDir: dir})
	require.Error(t, err)
}

func TestMemoryAnalysisChart_NoMemoryBenchmarks(t *testing.T) {
	err := MemoryAnalysisChart([]measurement.Measurement{{Name: "plugin_load_time", Value: 1}}, filepath.Join(t.TempDir(), "m.png"))
	assert.True(t, errors.Is(err, ErrNoData))
}

func TestComparisonChart_NoOverlap(t *testing.T) {
	current := measurement.NewSet(measurement.Measurement{Name: "a", Value: 1})
	baseline := measurement.NewSet(measurement.Measurement{Name: "b", Value: 1})

	err := ComparisonChart(current, baseline, 0.05, filepath.Join(t.TempDir(), "c.png"))
	assert.True(t, errors.Is(err, ErrNoData))
}

type fakeTrends struct {
	calls []string
}

func (f *fakeTrends) MetricHistory(name string, limit int) ([]history.MetricPoint, error) {
	f.calls = append(f.calls, name)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return []history.MetricPoint{
		{Timestamp: base, Value: 1},
		{Timestamp: base.Add(24 * time.Hour), Value: 1.1},
	}, nil
}

func TestTrendsChart_UsesRecordedHistory(t *testing.T) {
	source := &fakeTrends{}
	path := filepath.Join(t.TempDir(), "trends.png")
	ms := []measurement.Measurement{
		{Name: "server_startup_avg", Value: 1},
		{Name: "not_a_key_benchmark", Value: 1},
	}

	require.NoError(t, TrendsChart(ms, source, time.Now(), rand.New(rand.NewSource(1)), path))
	assert.Equal(t, []string{"server_startup_avg"}, source.calls)
	assert.True(t, isPNG(t, path))
}
