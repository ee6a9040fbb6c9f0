package compare

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studiowebux/benchops/internal/measurement"
)

func TestChangeFraction(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		baseline float64
		want     float64
	}{
		{name: "increase", current: 110, baseline: 100, want: 0.1},
		{name: "decrease", current: 90, baseline: 100, want: -0.1},
		{name: "unchanged", current: 100, baseline: 100, want: 0},
		{name: "zero baseline, positive current", current: 5, baseline: 0, want: math.Inf(1)},
		{name: "zero baseline, zero current", current: 0, baseline: 0, want: 0},
		{name: "zero baseline, negative current", current: -3, baseline: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChangeFraction(tt.current, tt.baseline)
			if math.IsInf(tt.want, 1) {
				assert.True(t, math.IsInf(got, 1))
				return
			}
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		name          string
		current       float64
		lowerIsBetter bool
		want          Classification
	}{
		{name: "lower-is-better +4.999%", current: 104.999, lowerIsBetter: true, want: Stable},
		{name: "lower-is-better +5% exactly", current: 105, lowerIsBetter: true, want: Stable},
		{name: "lower-is-better +5.001%", current: 105.001, lowerIsBetter: true, want: Regression},
		{name: "lower-is-better -4.999%", current: 95.001, lowerIsBetter: true, want: Stable},
		{name: "lower-is-better -5% exactly", current: 95, lowerIsBetter: true, want: Stable},
		{name: "lower-is-better -5.001%", current: 94.999, lowerIsBetter: true, want: Improvement},
		{name: "higher-is-better +4.999%", current: 104.999, lowerIsBetter: false, want: Stable},
		{name: "higher-is-better +5.001%", current: 105.001, lowerIsBetter: false, want: Improvement},
		{name: "higher-is-better -4.999%", current: 95.001, lowerIsBetter: false, want: Stable},
		{name: "higher-is-better -5.001%", current: 94.999, lowerIsBetter: false, want: Regression},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change := ChangeFraction(tt.current, 100)
			assert.Equal(t, tt.want, Classify(change, tt.lowerIsBetter, DefaultThreshold))
		})
	}
}

func TestClassify_InfiniteChange(t *testing.T) {
	assert.Equal(t, Regression, Classify(math.Inf(1), true, DefaultThreshold))
	assert.Equal(t, Improvement, Classify(math.Inf(1), false, DefaultThreshold))
}

func TestCompare_RegressionScenario(t *testing.T) {
	current := measurement.NewSet(measurement.Measurement{Name: "x", Value: 110, Unit: "ms", LowerIsBetter: true})
	baseline := measurement.NewSet(measurement.Measurement{Name: "x", Value: 100, Unit: "ms", LowerIsBetter: true})

	comparisons := Compare(current, baseline, DefaultThreshold)
	require.Len(t, comparisons, 1)

	c := comparisons[0]
	assert.InDelta(t, 10.0, c.ChangePercent, 1e-9)
	assert.True(t, c.Regression)
	assert.False(t, c.Improvement)
	assert.Equal(t, Regression, c.Classification())
}

func TestCompare_ImprovementScenario(t *testing.T) {
	current := measurement.NewSet(measurement.Measurement{Name: "x", Value: 110, Unit: "ms", LowerIsBetter: false})
	baseline := measurement.NewSet(measurement.Measurement{Name: "x", Value: 100, Unit: "ms", LowerIsBetter: false})

	comparisons := Compare(current, baseline, DefaultThreshold)
	require.Len(t, comparisons, 1)
	assert.InDelta(t, 10.0, comparisons[0].ChangePercent, 1e-9)
	assert.Equal(t, Improvement, comparisons[0].Classification())
}

func TestCompare_DirectionComesFromCurrent(t *testing.T) {
	current := measurement.NewSet(measurement.Measurement{Name: "x", Value: 110, Unit: "ops", LowerIsBetter: false})
	baseline := measurement.NewSet(measurement.Measurement{Name: "x", Value: 100, Unit: "ops", LowerIsBetter: true})

	comparisons := Compare(current, baseline, DefaultThreshold)
	require.Len(t, comparisons, 1)
	assert.Equal(t, Improvement, comparisons[0].Classification())
}

func TestCompare_SkipsCurrentOnlyMeasurements(t *testing.T) {
	current := measurement.NewSet(
		measurement.Measurement{Name: "server_startup_avg", Value: 1, Unit: "s", LowerIsBetter: true},
		measurement.Measurement{Name: "brand_new_metric", Value: 1, Unit: "s", LowerIsBetter: true},
	)
	baseline := measurement.NewSet(
		measurement.Measurement{Name: "server_startup_avg", Value: 1, Unit: "s", LowerIsBetter: true},
		measurement.Measurement{Name: "baseline_only", Value: 1, Unit: "s", LowerIsBetter: true},
	)

	comparisons := Compare(current, baseline, DefaultThreshold)
	require.Len(t, comparisons, 1)
	assert.Equal(t, "server_startup_avg", comparisons[0].Name)
}

func TestCompare_ZeroBaselineDoesNotPanic(t *testing.T) {
	current := measurement.NewSet(measurement.Measurement{Name: "x", Value: 3, Unit: "ms", LowerIsBetter: true})
	baseline := measurement.NewSet(measurement.Measurement{Name: "x", Value: 0, Unit: "ms", LowerIsBetter: true})

	comparisons := Compare(current, baseline, DefaultThreshold)
	require.Len(t, comparisons, 1)
	assert.True(t, math.IsInf(comparisons[0].ChangePercent, 1))
	assert.True(t, comparisons[0].Regression)
}

func TestCompare_PreservesCurrentOrder(t *testing.T) {
	ms := []measurement.Measurement{
		{Name: "c", Value: 1, LowerIsBetter: true},
		{Name: "a", Value: 1, LowerIsBetter: true},
		{Name: "b", Value: 1, LowerIsBetter: true},
	}
	comparisons := Compare(measurement.NewSet(ms...), measurement.NewSet(ms...), DefaultThreshold)

	var names []string
	for _, c := range comparisons {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)
}
