package stresstest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRun() *RunResult {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sessions := []SessionResult{
		{SessionID: 0, Connected: true, Success: true, ConnectTime: 10 * time.Millisecond, TotalTime: time.Second, PacketsSent: 9, PacketsReceived: 9},
		{SessionID: 1, Connected: false, Errors: 1, ErrorsByKind: map[string]int{ErrorConnectionRefused: 1}},
	}
	summary := Aggregate(sessions, 2*time.Second, 30)
	return &RunResult{
		ID:          "3b241101-e2bb-4255-8caf-4136c566a962",
		Target:      "localhost:19132",
		Driver:      DriverHTTP,
		StartedAt:   started,
		CompletedAt: started.Add(2 * time.Second),
		Sessions:    sessions,
		Summary:     summary,
		Verdict:     Assess(summary),
	}
}

func TestRenderReport(t *testing.T) {
	report := RenderReport(sampleRun())

	assert.True(t, strings.HasPrefix(report, "# Load Test Report\n"))
	for _, want := range []string{
		"## Test Configuration",
		"- **Target**: localhost:19132",
		"- **Total Connections**: 2",
		"- **Test Duration**: 2.00 seconds",
		"- **Successful Connections**: 1",
		"- **Failed Connections**: 1",
		"- **Success Rate**: 50.0%",
		"- **Average Connect Time**: 0.010 seconds",
		"- **Average Response Time**: 1.000 seconds",
		"- **Packets per Second**: 4.5",
		"- **Errors per Second**: 0.5",
		"- **Memory Usage**: 30.0 MB",
		"## Error Breakdown",
		"- **connection_refused**: 1",
		"## ❌ Performance Assessment: FAIL",
	} {
		assert.Contains(t, report, want)
	}
}

func TestRenderReport_Verdicts(t *testing.T) {
	run := sampleRun()

	run.Verdict = VerdictPass
	assert.Contains(t, RenderReport(run), "## ✅ Performance Assessment: PASS")

	run.Verdict = VerdictWarning
	assert.Contains(t, RenderReport(run), "## ⚠️ Performance Assessment: WARNING")

	run.Summary.ErrorBreakdown = nil
	assert.NotContains(t, RenderReport(run), "## Error Breakdown")
}

func TestWriteResultsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "load_test_results.json")
	require.NoError(t, WriteResultsJSON(path, sampleRun()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, key := range []string{
		"total_connections", "successful_connections", "failed_connections", "total_duration",
		"avg_connect_time", "avg_response_time", "packets_per_second", "errors_per_second",
		"memory_usage_mb", "run_id", "verdict",
	} {
		assert.Contains(t, doc, key)
	}
	assert.Equal(t, float64(2), doc["total_connections"])
	assert.Equal(t, "FAIL", doc["verdict"])
	assert.Equal(t, "2026-03-01T12:00:00Z", doc["started_at"])
}

func TestWriteSessionsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.csv")
	require.NoError(t, WriteSessionsCSV(path, sampleRun().Sessions))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var rows []*sessionRow
	require.NoError(t, gocsv.UnmarshalFile(f, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, 9, rows[0].PacketsSent)
	assert.True(t, rows[0].Success)
	assert.False(t, rows[1].Connected)
	assert.Equal(t, 1, rows[1].Errors)
}

func TestWriteMetrics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loadtest.prom")
	require.NoError(t, WriteMetrics(path, sampleRun()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `benchops_loadtest_connections{result="successful"} 1`)
	assert.Contains(t, text, `benchops_loadtest_errors{kind="connection_refused"} 1`)
	assert.Contains(t, text, "benchops_loadtest_success_ratio 0.5")
}

type fakeStore struct {
	runs []*RunResult
	err  error
}

func (f *fakeStore) SaveRun(run *RunResult) (int64, error) {
	f.runs = append(f.runs, run)
	return int64(len(f.runs)), f.err
}

func TestRun_WritesOutputs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	dir := t.TempDir()
	store := &fakeStore{err: errors.New("disk full")}
	var out bytes.Buffer
	opts := RunOptions{
		Config:      testConfig(t, server, 2, 50*time.Millisecond),
		ResultsPath: filepath.Join(dir, "load_test_results.json"),
		ReportPath:  filepath.Join(dir, "load_test_report.md"),
		SessionsCSV: filepath.Join(dir, "sessions.csv"),
		MetricsFile: filepath.Join(dir, "loadtest.prom"),
		Store:       store,
		Out:         &out,
	}

	run, err := Run(context.Background(), opts)
	require.NoError(t, err, "history failures are not fatal")
	assert.Equal(t, VerdictPass, run.Verdict)
	assert.Len(t, store.runs, 1)
	assert.Contains(t, out.String(), "# Load Test Report")

	for _, p := range []string{opts.ResultsPath, opts.ReportPath, opts.SessionsCSV, opts.MetricsFile} {
		assert.FileExists(t, p)
	}
	report, err := os.ReadFile(opts.ReportPath)
	require.NoError(t, err)
	assert.Contains(t, string(report), "Performance Assessment: PASS")
}

func TestRun_BelowThreshold(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	var out bytes.Buffer
	run, err := Run(context.Background(), RunOptions{
		Config: testConfig(t, server, 2, 50*time.Millisecond),
		Out:    &out,
	})
	require.ErrorIs(t, err, ErrBelowThreshold)
	require.NotNil(t, run)
	assert.Equal(t, VerdictFail, run.Verdict)
}
