package charts

import (
	"strings"

	"github.com/studiowebux/benchops/internal/measurement"
)

// Categories in priority order. A name matching several rules belongs to the
// first one listed, so "memory_packet_pool" is memory, not network.
const (
	CategoryMemory   = "memory"
	CategoryNetwork  = "network"
	CategoryECS      = "ecs"
	CategoryPlugin   = "plugin"
	CategoryTickRate = "tick_rate"
	CategoryServer   = "server"
	CategoryGeneral  = "general"
)

type categoryRule struct {
	category string
	keywords []string
}

var categoryRules = []categoryRule{
	{CategoryMemory, []string{"memory", "pool", "allocation"}},
	{CategoryNetwork, []string{"packet", "network"}},
	{CategoryECS, []string{"ecs", "entity", "component"}},
	{CategoryPlugin, []string{"plugin"}},
	{CategoryTickRate, []string{"tick"}},
	{CategoryServer, []string{"server", "startup"}},
}

// Categorize buckets a benchmark by case-insensitive substring match
func Categorize(name string) string {
	lower := strings.ToLower(name)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	return CategoryGeneral
}

// CategoryGroup is one category and its measurements in load order
type CategoryGroup struct {
	Category     string
	Measurements []measurement.Measurement
}

// GroupByCategory groups measurements, categories in first-seen order
func GroupByCategory(ms []measurement.Measurement) []CategoryGroup {
	var groups []CategoryGroup
	index := make(map[string]int)
	for _, m := range ms {
		cat := Categorize(m.Name)
		i, ok := index[cat]
		if !ok {
			i = len(groups)
			index[cat] = i
			groups = append(groups, CategoryGroup{Category: cat})
		}
		groups[i].Measurements = append(groups[i].Measurements, m)
	}
	return groups
}
