package compare

import (
	"fmt"
	"strings"
)

// Summary counts comparisons per classification
type Summary struct {
	Total        int
	Regressions  int
	Improvements int
	Stable       int
}

// Summarize counts comparisons per classification
func Summarize(comparisons []Comparison) Summary {
	s := Summary{Total: len(comparisons)}
	for _, c := range comparisons {
		switch c.Classification() {
		case Regression:
			s.Regressions++
		case Improvement:
			s.Improvements++
		default:
			s.Stable++
		}
	}
	return s
}

// RenderMarkdown renders the comparison report. Output depends only on the
// comparisons and their order.
func RenderMarkdown(comparisons []Comparison) string {
	summary := Summarize(comparisons)

	var b strings.Builder
	b.WriteString("# Benchmark Comparison Report\n\n")
	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- **Total benchmarks**: %d\n", summary.Total)
	fmt.Fprintf(&b, "- **Regressions**: %d\n", summary.Regressions)
	fmt.Fprintf(&b, "- **Improvements**: %d\n", summary.Improvements)
	fmt.Fprintf(&b, "- **Stable**: %d\n\n", summary.Stable)

	sections := []struct {
		title string
		class Classification
	}{
		{"## ⚠️ Performance Regressions", Regression},
		{"## ✅ Performance Improvements", Improvement},
		{"## 📊 Stable Performance", Stable},
	}
	for _, section := range sections {
		items := Filter(comparisons, section.class)
		if len(items) == 0 {
			continue
		}
		b.WriteString(section.title + "\n")
		for _, c := range items {
			b.WriteString(FormatLine(c) + "\n")
		}
		b.WriteString("\n")
	}

	return b.String()
}

// FormatLine renders one comparison as a markdown bullet
func FormatLine(c Comparison) string {
	return fmt.Sprintf("- **%s**: %.3f vs %.3f (%+.1f%%)", c.Name, c.Current, c.Baseline, c.ChangePercent)
}
