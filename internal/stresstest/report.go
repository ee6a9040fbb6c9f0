package stresstest

import (
	"fmt"
	"strings"
)

// RenderReport renders the markdown load test report
func RenderReport(run *RunResult) string {
	s := run.Summary
	var b strings.Builder

	b.WriteString("# Load Test Report\n\n")

	b.WriteString("## Test Configuration\n")
	fmt.Fprintf(&b, "- **Target**: %s\n", run.Target)
	fmt.Fprintf(&b, "- **Driver**: %s\n", run.Driver)
	fmt.Fprintf(&b, "- **Run ID**: %s\n", run.ID)
	fmt.Fprintf(&b, "- **Total Connections**: %d\n", s.TotalConnections)
	fmt.Fprintf(&b, "- **Test Duration**: %.2f seconds\n\n", s.TotalDuration)

	b.WriteString("## Results Summary\n")
	fmt.Fprintf(&b, "- **Successful Connections**: %d\n", s.SuccessfulConnections)
	fmt.Fprintf(&b, "- **Failed Connections**: %d\n", s.FailedConnections)
	fmt.Fprintf(&b, "- **Success Rate**: %.1f%%\n\n", s.SuccessRate()*100)

	b.WriteString("## Performance Metrics\n")
	fmt.Fprintf(&b, "- **Average Connect Time**: %.3f seconds\n", s.AvgConnectTime)
	fmt.Fprintf(&b, "- **Average Response Time**: %.3f seconds\n", s.AvgResponseTime)
	fmt.Fprintf(&b, "- **Response Time p50/p95/p99**: %.3f / %.3f / %.3f seconds\n",
		s.P50ResponseTime, s.P95ResponseTime, s.P99ResponseTime)
	fmt.Fprintf(&b, "- **Packets per Second**: %.1f\n", s.PacketsPerSecond)
	fmt.Fprintf(&b, "- **Errors per Second**: %.1f\n", s.ErrorsPerSecond)
	fmt.Fprintf(&b, "- **Memory Usage**: %.1f MB\n\n", s.MemoryUsageMB)

	if kinds := s.ErrorKinds(); len(kinds) > 0 {
		b.WriteString("## Error Breakdown\n")
		for _, kind := range kinds {
			fmt.Fprintf(&b, "- **%s**: %d\n", kind, s.ErrorBreakdown[kind])
		}
		b.WriteString("\n")
	}

	switch run.Verdict {
	case VerdictPass:
		b.WriteString("## ✅ Performance Assessment: PASS\n")
		b.WriteString("The server handled the load test successfully with minimal failures.\n")
	case VerdictWarning:
		b.WriteString("## ⚠️ Performance Assessment: WARNING\n")
		b.WriteString("The server showed some performance issues under load.\n")
	default:
		b.WriteString("## ❌ Performance Assessment: FAIL\n")
		b.WriteString("The server failed to handle the load test adequately.\n")
	}
	return b.String()
}
