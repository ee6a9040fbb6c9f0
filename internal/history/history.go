package history

import "time"

// Classification labels stored with every comparison row
const (
	ClassRegression  = "regression"
	ClassImprovement = "improvement"
	ClassStable      = "stable"
)

// BenchmarkRun is one comparator invocation that actually compared results
type BenchmarkRun struct {
	ID           int64
	StartedAt    time.Time
	CurrentFile  string
	BaselineFile string
	Threshold    float64
	Total        int
	Regressions  int
	Improvements int
	Stable       int
	Promoted     bool
}

// ComparisonRecord is the stored form of one compared measurement
type ComparisonRecord struct {
	RunID          int64
	Name           string
	CurrentValue   float64
	BaselineValue  float64
	ChangePercent  float64
	Classification string
}

// MetricPoint is one historical value of a named measurement
type MetricPoint struct {
	RunID          int64
	Timestamp      time.Time
	Value          float64
	ChangePercent  float64
	Classification string
}
