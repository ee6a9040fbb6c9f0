package stresstest

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"
)

// Summary is the aggregate of all session results of one run. Times are in
// seconds so the JSON output reads the same as the CI dashboards expect.
type Summary struct {
	TotalConnections      int     `json:"total_connections"`
	SuccessfulConnections int     `json:"successful_connections"`
	FailedConnections     int     `json:"failed_connections"`
	TotalDuration         float64 `json:"total_duration"`
	AvgConnectTime        float64 `json:"avg_connect_time"`
	AvgResponseTime       float64 `json:"avg_response_time"`
	PacketsPerSecond      float64 `json:"packets_per_second"`
	ErrorsPerSecond       float64 `json:"errors_per_second"`
	MemoryUsageMB         float64 `json:"memory_usage_mb"`

	TotalPacketsSent int            `json:"total_packets_sent"`
	TotalErrors      int            `json:"total_errors"`
	P50ResponseTime  float64        `json:"p50_response_time"`
	P95ResponseTime  float64        `json:"p95_response_time"`
	P99ResponseTime  float64        `json:"p99_response_time"`
	ErrorBreakdown   map[string]int `json:"error_breakdown,omitempty"`
}

// Aggregate computes the run summary. Mean connect and response times (and
// their percentiles) cover successful sessions only and are 0 when none
// succeeded. Throughput and error rate divide by the wall-clock duration of
// the whole run.
func Aggregate(results []SessionResult, wall time.Duration, memoryMB float64) Summary {
	s := Summary{
		TotalConnections: len(results),
		TotalDuration:    wall.Seconds(),
		MemoryUsageMB:    memoryMB,
	}

	var connectTimes, responseTimes stats.Float64Data
	for _, r := range results {
		if r.Success {
			s.SuccessfulConnections++
			connectTimes = append(connectTimes, r.ConnectTime.Seconds())
			responseTimes = append(responseTimes, r.TotalTime.Seconds())
		} else {
			s.FailedConnections++
		}
		s.TotalPacketsSent += r.PacketsSent
		s.TotalErrors += r.Errors
		for kind, n := range r.ErrorsByKind {
			if s.ErrorBreakdown == nil {
				s.ErrorBreakdown = make(map[string]int)
			}
			s.ErrorBreakdown[kind] += n
		}
	}

	s.AvgConnectTime = mean(connectTimes)
	s.AvgResponseTime = mean(responseTimes)
	s.P50ResponseTime = percentile(responseTimes, 50)
	s.P95ResponseTime = percentile(responseTimes, 95)
	s.P99ResponseTime = percentile(responseTimes, 99)

	if secs := wall.Seconds(); secs > 0 {
		s.PacketsPerSecond = float64(s.TotalPacketsSent) / secs
		s.ErrorsPerSecond = float64(s.TotalErrors) / secs
	}
	return s
}

func mean(data stats.Float64Data) float64 {
	if len(data) == 0 {
		return 0
	}
	m, err := data.Mean()
	if err != nil {
		return 0
	}
	return m
}

func percentile(data stats.Float64Data, p float64) float64 {
	if len(data) == 0 {
		return 0
	}
	v, err := data.Percentile(p)
	if err != nil {
		return 0
	}
	return v
}

// SuccessRate is the fraction of successful sessions, 0 for an empty run
func (s Summary) SuccessRate() float64 {
	if s.TotalConnections == 0 {
		return 0
	}
	return float64(s.SuccessfulConnections) / float64(s.TotalConnections)
}

// ErrorKinds returns the breakdown categories sorted by count, then name
func (s Summary) ErrorKinds() []string {
	kinds := make([]string, 0, len(s.ErrorBreakdown))
	for kind := range s.ErrorBreakdown {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool {
		a, b := s.ErrorBreakdown[kinds[i]], s.ErrorBreakdown[kinds[j]]
		if a != b {
			return a > b
		}
		return kinds[i] < kinds[j]
	})
	return kinds
}
