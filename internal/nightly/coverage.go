package nightly

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// maxLineSize bounds a single line of a text result file
const maxLineSize = 1024 * 1024

// ParseLCOV sums the LF/LH, BRF/BRH and FNF/FNH records of an lcov
// tracefile. Malformed counters are ignored; a line longer than maxLineSize
// is an error.
func ParseLCOV(data []byte) (CoverageResults, error) {
	var c CoverageResults

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), ":")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			continue
		}
		switch key {
		case "LF":
			c.TotalLines += n
		case "LH":
			c.CoveredLines += n
		case "BRF":
			c.TotalBranches += n
		case "BRH":
			c.CoveredBranches += n
		case "FNF":
			c.TotalFunctions += n
		case "FNH":
			c.CoveredFunctions += n
		}
	}
	if err := scanner.Err(); err != nil {
		return CoverageResults{}, fmt.Errorf("failed to read lcov data: %w", err)
	}

	c.LineCoverage = percent(c.CoveredLines, c.TotalLines)
	c.BranchCoverage = percent(c.CoveredBranches, c.TotalBranches)
	c.FunctionCoverage = percent(c.CoveredFunctions, c.TotalFunctions)
	return c, nil
}

func percent(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
