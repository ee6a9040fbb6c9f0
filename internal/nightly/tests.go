package nightly

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cast"
)

var (
	cargoResultRe = regexp.MustCompile(`test result: \w+\. (\d+) passed; (\d+) failed`)
	cargoUnitRe   = regexp.MustCompile(`^\s*Running unittests\b`)
	cargoIntegRe  = regexp.MustCompile(`^\s*Running tests[/\\]`)
	cargoDocRe    = regexp.MustCompile(`^\s*Doc-tests\b`)
)

// ParseTestResultsJSON reads {"unit_tests": {"passed": N, "failed": M}, ...}.
// Counts may be numbers or numeric strings.
func ParseTestResultsJSON(data []byte) (TestResults, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return TestResults{}, fmt.Errorf("invalid test results JSON: %w", err)
	}
	return TestResults{
		Unit:        countsFrom(raw["unit_tests"]),
		Integration: countsFrom(raw["integration_tests"]),
		Doc:         countsFrom(raw["doc_tests"]),
	}, nil
}

func countsFrom(v any) TestCounts {
	m := cast.ToStringMap(v)
	return newTestCounts(cast.ToInt(m["passed"]), cast.ToInt(m["failed"]))
}

// ParseCargoTestLog sums the "test result:" lines of a cargo test log. Each
// result belongs to the suite announced by the closest header above it;
// results without a header count as unit tests.
func ParseCargoTestLog(data []byte) (TestResults, error) {
	var results TestResults
	suite := &results.Unit

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case cargoUnitRe.MatchString(line):
			suite = &results.Unit
		case cargoIntegRe.MatchString(line):
			suite = &results.Integration
		case cargoDocRe.MatchString(line):
			suite = &results.Doc
		default:
			m := cargoResultRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			*suite = suite.add(newTestCounts(cast.ToInt(m[1]), cast.ToInt(m[2])))
		}
	}
	if err := scanner.Err(); err != nil {
		return TestResults{}, fmt.Errorf("failed to read test log: %w", err)
	}
	return results, nil
}

// collectTests reads the first existing test results file. JSON files are
// parsed as summaries, anything else as a cargo test log.
func collectTests(paths []string) (TestResults, string, error) {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return TestResults{}, path, err
		}
		if strings.EqualFold(filepath.Ext(path), ".json") {
			results, err := ParseTestResultsJSON(data)
			return results, path, err
		}
		results, err := ParseCargoTestLog(data)
		return results, path, err
	}
	return TestResults{}, "", os.ErrNotExist
}
