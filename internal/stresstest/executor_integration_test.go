package stresstest

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfig points a config at server with short timings
func testConfig(t *testing.T, server *httptest.Server, connections int, duration time.Duration) Config {
	t.Helper()
	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	host, port, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	httpPort, err := strconv.Atoi(port)
	require.NoError(t, err)

	return Config{
		Host:              host,
		Port:              19132,
		HTTPPort:          httpPort,
		Connections:       connections,
		Duration:          duration,
		KeepAliveInterval: 10 * time.Millisecond,
		StaggerPause:      time.Millisecond,
		RequestTimeout:    2 * time.Second,
		Driver:            DriverHTTP,
	}
}

func newTestExecutor(t *testing.T, cfg Config) *Executor {
	t.Helper()
	driver, err := NewDriver(cfg)
	require.NoError(t, err)
	executor, err := NewExecutor(cfg, driver)
	require.NoError(t, err)
	executor.MemoryUsage = func() float64 { return 42 }
	return executor
}

func TestExecutor_BasicExecution(t *testing.T) {
	var health, packets int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case HealthPath:
			atomic.AddInt64(&health, 1)
		case PacketPath:
			var p KeepAlivePacket
			if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.Type != "keep_alive" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			atomic.AddInt64(&packets, 1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	executor := newTestExecutor(t, testConfig(t, server, 5, 150*time.Millisecond))
	run, err := executor.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(5), atomic.LoadInt64(&health))
	assert.Len(t, run.Sessions, 5)
	for i, s := range run.Sessions {
		assert.Equal(t, i, s.SessionID)
		assert.True(t, s.Connected)
		assert.True(t, s.Success)
		assert.Zero(t, s.Errors)
		assert.Positive(t, s.PacketsSent)
		assert.Equal(t, s.PacketsSent, s.PacketsReceived)
	}

	sum := run.Summary
	assert.Equal(t, 5, sum.TotalConnections)
	assert.Equal(t, 5, sum.SuccessfulConnections)
	assert.Equal(t, sum.TotalConnections, sum.SuccessfulConnections+sum.FailedConnections)
	assert.Equal(t, int(atomic.LoadInt64(&packets)), sum.TotalPacketsSent)
	assert.Positive(t, sum.PacketsPerSecond)
	assert.Positive(t, sum.AvgConnectTime)
	assert.GreaterOrEqual(t, sum.AvgResponseTime, 0.15)
	assert.Equal(t, 42.0, sum.MemoryUsageMB)
	assert.Equal(t, VerdictPass, run.Verdict)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "127.0.0.1:19132", run.Target)
}

func TestExecutor_StopsAfterMaxErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == PacketPath {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testConfig(t, server, 3, 10*time.Second)
	cfg.KeepAliveInterval = time.Millisecond
	executor := newTestExecutor(t, cfg)

	start := time.Now()
	run, err := executor.Run(context.Background())
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second, "sessions must give up long before the duration")

	for _, s := range run.Sessions {
		assert.True(t, s.Connected)
		assert.Equal(t, DefaultMaxSessionErrors, s.Errors)
		assert.False(t, s.Success)
		assert.Zero(t, s.PacketsSent)
		assert.Equal(t, DefaultMaxSessionErrors, s.ErrorsByKind[ErrorUnexpectedStatus])
	}
	assert.Equal(t, 0, run.Summary.SuccessfulConnections)
	assert.Equal(t, 3, run.Summary.FailedConnections)
	assert.Zero(t, run.Summary.AvgResponseTime)
	assert.Zero(t, run.Summary.AvgConnectTime)
	assert.Equal(t, VerdictFail, run.Verdict)
	assert.Equal(t, 3*DefaultMaxSessionErrors, run.Summary.ErrorBreakdown[ErrorUnexpectedStatus])
}

func TestExecutor_ConnectFailureEndsSession(t *testing.T) {
	var packets int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == HealthPath {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		atomic.AddInt64(&packets, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	executor := newTestExecutor(t, testConfig(t, server, 4, time.Second))
	run, err := executor.Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, atomic.LoadInt64(&packets), "no keep-alive after a failed connect")
	for _, s := range run.Sessions {
		assert.False(t, s.Connected)
		assert.False(t, s.Success)
		assert.Equal(t, 1, s.Errors)
	}
	assert.Equal(t, 4, run.Summary.FailedConnections)
	assert.Equal(t, VerdictFail, run.Verdict)
}

func TestExecutor_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	cfg := testConfig(t, server, 2, time.Second)
	server.Close()

	executor := newTestExecutor(t, cfg)
	run, err := executor.Run(context.Background())
	require.NoError(t, err)

	for _, s := range run.Sessions {
		assert.False(t, s.Success)
		assert.Equal(t, 1, s.ErrorsByKind[ErrorConnectionRefused])
	}
}

func TestExecutor_CancelStopsSessions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	executor := newTestExecutor(t, testConfig(t, server, 3, time.Minute))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	run, err := executor.Run(ctx)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 10*time.Second)
	assert.Len(t, run.Sessions, 3)
	assert.Equal(t, 3, run.Summary.TotalConnections)
}

func TestExecutor_WebSocketDriver(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != WebSocketPath {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(mt, msg); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	cfg := testConfig(t, server, 3, 100*time.Millisecond)
	cfg.Driver = DriverWebSocket
	executor := newTestExecutor(t, cfg)

	run, err := executor.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DriverWebSocket, run.Driver)
	for _, s := range run.Sessions {
		assert.True(t, s.Success)
		assert.Positive(t, s.PacketsReceived)
	}
	assert.Equal(t, VerdictPass, run.Verdict)
}

func TestExecutor_CancelInterruptsWebSocketKeepAlive(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		// swallow keep-alives without replying
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	cfg := testConfig(t, server, 2, time.Minute)
	cfg.Driver = DriverWebSocket
	cfg.RequestTimeout = 30 * time.Second
	executor := newTestExecutor(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(200*time.Millisecond, cancel)
	defer cancel()

	start := time.Now()
	run, err := executor.Run(ctx)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	for _, s := range run.Sessions {
		assert.True(t, s.Connected)
		assert.Zero(t, s.Errors)
		assert.Zero(t, s.PacketsReceived)
	}
}
