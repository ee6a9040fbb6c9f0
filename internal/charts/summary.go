package charts

import (
	"fmt"
	"strings"
	"time"

	"github.com/studiowebux/benchops/internal/compare"
	"github.com/studiowebux/benchops/internal/measurement"
)

// KeyMetrics are highlighted in the summary report when present
var KeyMetrics = []string{
	"server_startup_avg",
	"packet_processing_ecs_overhead",
	"memory_pool_efficiency",
	"tick_rate_lightweight_impact",
	"sustained_tick_rate_with_plugins",
}

// RenderSummary builds summary_report.md. baseline may be nil or empty, in
// which case the performance changes section is left out. Zero baselines are
// not counted in any bucket.
func RenderSummary(current, baseline *measurement.Set, threshold float64, generated time.Time) string {
	var b strings.Builder

	b.WriteString("# Benchmark Summary Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", generated.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Total benchmarks: %d\n", current.Len())

	if baseline.Len() > 0 {
		fmt.Fprintf(&b, "Baseline benchmarks: %d\n", baseline.Len())

		var counts compare.Summary
		for _, cur := range current.All() {
			base, ok := baseline.Get(cur.Name)
			if !ok || base.Value == 0 {
				continue
			}
			change := compare.ChangeFraction(cur.Value, base.Value)
			switch compare.Classify(change, cur.LowerIsBetter, threshold) {
			case compare.Regression:
				counts.Regressions++
			case compare.Improvement:
				counts.Improvements++
			default:
				counts.Stable++
			}
		}

		b.WriteString("\n## Performance Changes\n\n")
		fmt.Fprintf(&b, "- Regressions: %d\n", counts.Regressions)
		fmt.Fprintf(&b, "- Improvements: %d\n", counts.Improvements)
		fmt.Fprintf(&b, "- Stable: %d\n", counts.Stable)
	}

	b.WriteString("\n## Key Metrics\n\n")
	for _, name := range KeyMetrics {
		cur, ok := current.Get(name)
		if !ok {
			continue
		}
		suffix := ""
		if base, ok := baseline.Get(name); ok && base.Value != 0 {
			suffix = fmt.Sprintf(" (%+.1f%% vs baseline)", compare.ChangeFraction(cur.Value, base.Value)*100)
		}
		fmt.Fprintf(&b, "- **%s**: %.3f %s%s\n", name, cur.Value, cur.Unit, suffix)
	}

	return b.String()
}
