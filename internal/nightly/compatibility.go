package nightly

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"
)

// compatibilityFile is the subset of a compatibility or migration result file
// the report uses. Keys are optional.
type compatibilityFile struct {
	minecraftVersions map[string]any
	migrationTests    *TestCounts
	backwardCompat    *bool
}

// parseCompatibility reads minecraft_versions, migration_tests and
// backward_compatibility from a loosely typed result file.
func parseCompatibility(data []byte) (compatibilityFile, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return compatibilityFile{}, fmt.Errorf("invalid compatibility JSON: %w", err)
	}

	var f compatibilityFile
	if v, ok := raw["minecraft_versions"]; ok {
		versions, err := cast.ToStringMapE(v)
		if err != nil {
			return compatibilityFile{}, fmt.Errorf("minecraft_versions: %w", err)
		}
		f.minecraftVersions = versions
	}
	if v, ok := raw["migration_tests"]; ok {
		counts := countsFrom(v)
		f.migrationTests = &counts
	}
	if v, ok := raw["backward_compatibility"]; ok {
		compat, err := cast.ToBoolE(v)
		if err != nil {
			return compatibilityFile{}, fmt.Errorf("backward_compatibility: %w", err)
		}
		f.backwardCompat = &compat
	}
	return f, nil
}

// merge folds one file into the results. Later files replace the version map
// and migration counts; any file reporting broken compatibility wins.
func (f compatibilityFile) merge(into CompatibilityResults) CompatibilityResults {
	if f.minecraftVersions != nil {
		into.MinecraftVersions = f.minecraftVersions
	}
	if f.migrationTests != nil {
		into.MigrationTests = *f.migrationTests
	}
	if f.backwardCompat != nil && !*f.backwardCompat {
		into.BackwardCompatibility = false
	}
	return into
}
