package measurement

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
	"go.uber.org/zap"
)

// Measurement is a single named benchmark result
type Measurement struct {
	Name          string  `json:"name"`
	Value         float64 `json:"value"`
	Unit          string  `json:"unit"`
	LowerIsBetter bool    `json:"lower_is_better"`
}

// File is the on-disk layout of a benchmark results file
type File struct {
	Benchmarks []Measurement `json:"benchmarks"`
}

// rawMeasurement keeps lower_is_better optional while decoding; absent means true
type rawMeasurement struct {
	Name          string  `json:"name"`
	Value         float64 `json:"value"`
	Unit          string  `json:"unit"`
	LowerIsBetter *bool   `json:"lower_is_better"`
}

func (r rawMeasurement) measurement() Measurement {
	lower := true
	if r.LowerIsBetter != nil {
		lower = *r.LowerIsBetter
	}
	return Measurement{Name: r.Name, Value: r.Value, Unit: r.Unit, LowerIsBetter: lower}
}

// Set is an ordered collection of measurements keyed by name.
// Order follows the first occurrence of each name; a later duplicate replaces the
// earlier value in place.
type Set struct {
	order []string
	items map[string]Measurement
}

// NewSet builds a set from measurements, applying the duplicate rule
func NewSet(ms ...Measurement) *Set {
	s := &Set{items: make(map[string]Measurement, len(ms))}
	for _, m := range ms {
		s.Put(m)
	}
	return s
}

// Put adds or replaces a measurement
func (s *Set) Put(m Measurement) {
	if s.items == nil {
		s.items = make(map[string]Measurement)
	}
	if _, exists := s.items[m.Name]; !exists {
		s.order = append(s.order, m.Name)
	}
	s.items[m.Name] = m
}

// Get looks a measurement up by name
func (s *Set) Get(name string) (Measurement, bool) {
	if s == nil {
		return Measurement{}, false
	}
	m, ok := s.items[name]
	return m, ok
}

// Len returns the number of distinct measurements
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Names returns measurement names in set order
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// All returns measurements in set order
func (s *Set) All() []Measurement {
	if s == nil {
		return nil
	}
	out := make([]Measurement, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.items[name])
	}
	return out
}

// Decode parses a results document. Both {"benchmarks": [...]} and a bare array
// are accepted; comments and trailing commas are tolerated.
func Decode(data []byte) (*Set, error) {
	clean := bytes.TrimSpace(jsonc.ToJSON(data))
	if len(clean) == 0 {
		return NewSet(), nil
	}

	var raws []rawMeasurement
	if clean[0] == '[' {
		if err := json.Unmarshal(clean, &raws); err != nil {
			return nil, fmt.Errorf("invalid benchmark list: %w", err)
		}
	} else {
		var doc struct {
			Benchmarks []rawMeasurement `json:"benchmarks"`
		}
		if err := json.Unmarshal(clean, &doc); err != nil {
			return nil, fmt.Errorf("invalid benchmark document: %w", err)
		}
		raws = doc.Benchmarks
	}

	set := NewSet()
	for i, r := range raws {
		if r.Name == "" {
			return nil, fmt.Errorf("benchmark #%d has no name", i)
		}
		set.Put(r.measurement())
	}
	return set, nil
}

// Load reads a required results file
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read benchmark file: %w", err)
	}
	set, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return set, nil
}

// LoadOptional reads a results file that may legitimately be absent.
// A missing file yields an empty set and a warning; a malformed file is an error.
func LoadOptional(path string) (*Set, error) {
	if path == "" {
		return NewSet(), nil
	}
	set, err := Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			zap.S().Warnf("Benchmark file %s not found", path)
			return NewSet(), nil
		}
		return nil, err
	}
	return set, nil
}
