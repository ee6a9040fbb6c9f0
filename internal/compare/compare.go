// Package compare detects benchmark regressions against a stored baseline.
package compare

import (
	"math"

	"github.com/sahilm/fuzzy"
	"github.com/studiowebux/benchops/internal/history"
	"github.com/studiowebux/benchops/internal/measurement"
	"go.uber.org/zap"
)

// DefaultThreshold is the relative change (5%) beyond which a measurement is no longer stable
const DefaultThreshold = 0.05

// Classification of a measurement's change relative to its baseline
type Classification int

const (
	Stable Classification = iota
	Regression
	Improvement
)

func (c Classification) String() string {
	switch c {
	case Regression:
		return history.ClassRegression
	case Improvement:
		return history.ClassImprovement
	default:
		return history.ClassStable
	}
}

// Comparison is the outcome for one measurement present in both result sets
type Comparison struct {
	Name          string  `json:"name"`
	Unit          string  `json:"unit"`
	Current       float64 `json:"current"`
	Baseline      float64 `json:"baseline"`
	ChangePercent float64 `json:"change_percent"`
	Regression    bool    `json:"regression"`
	Improvement   bool    `json:"improvement"`
}

// Classification returns the comparison's class
func (c Comparison) Classification() Classification {
	switch {
	case c.Regression:
		return Regression
	case c.Improvement:
		return Improvement
	default:
		return Stable
	}
}

// ChangeFraction returns (current-baseline)/baseline.
// A zero baseline yields +Inf when current is positive and 0 otherwise.
func ChangeFraction(current, baseline float64) float64 {
	if baseline == 0 {
		if current > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return (current - baseline) / baseline
}

// Classify applies the directional threshold rule. A change exactly at the
// threshold is stable.
func Classify(change float64, lowerIsBetter bool, threshold float64) Classification {
	if lowerIsBetter {
		switch {
		case change > threshold:
			return Regression
		case change < -threshold:
			return Improvement
		}
		return Stable
	}
	switch {
	case change < -threshold:
		return Regression
	case change > threshold:
		return Improvement
	}
	return Stable
}

// Compare evaluates every current measurement that has a baseline counterpart.
// Measurements without a baseline are skipped with a warning; they are never
// reported as new.
func Compare(current, baseline *measurement.Set, threshold float64) []Comparison {
	comparisons := make([]Comparison, 0, current.Len())
	baselineNames := baseline.Names()

	for _, cur := range current.All() {
		base, ok := baseline.Get(cur.Name)
		if !ok {
			warnMissingBaseline(cur.Name, baselineNames)
			continue
		}

		change := ChangeFraction(cur.Value, base.Value)
		class := Classify(change, cur.LowerIsBetter, threshold)

		comparisons = append(comparisons, Comparison{
			Name:          cur.Name,
			Unit:          cur.Unit,
			Current:       cur.Value,
			Baseline:      base.Value,
			ChangePercent: change * 100,
			Regression:    class == Regression,
			Improvement:   class == Improvement,
		})
	}

	return comparisons
}

func warnMissingBaseline(name string, baselineNames []string) {
	matches := fuzzy.Find(name, baselineNames)
	if len(matches) > 0 {
		zap.S().Warnf("No baseline for benchmark '%s' (did you mean '%s'?)", name, matches[0].Str)
		return
	}
	zap.S().Warnf("No baseline for benchmark '%s'", name)
}

// Filter returns the comparisons with the given classification, order preserved
func Filter(comparisons []Comparison, class Classification) []Comparison {
	var out []Comparison
	for _, c := range comparisons {
		if c.Classification() == class {
			out = append(out, c)
		}
	}
	return out
}

// Records converts comparisons to their stored history form
func Records(comparisons []Comparison) []history.ComparisonRecord {
	records := make([]history.ComparisonRecord, 0, len(comparisons))
	for _, c := range comparisons {
		records = append(records, history.ComparisonRecord{
			Name:           c.Name,
			CurrentValue:   c.Current,
			BaselineValue:  c.Baseline,
			ChangePercent:  c.ChangePercent,
			Classification: c.Classification().String(),
		})
	}
	return records
}
