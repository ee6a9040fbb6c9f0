// Package mock serves a stand-in target for the load tester: the same
// /health, /packet and /ws endpoints the session drivers use, with optional
// latency and failure injection.
package mock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	HealthPath    = "/health"
	PacketPath    = "/packet"
	WebSocketPath = "/ws"

	maxLogs = 1000
)

// keepAlive is the subset of the keep-alive payload the server reads
type keepAlive struct {
	Type         string `json:"type"`
	ConnectionID int    `json:"connection_id"`
}

// Server represents the stand-in HTTP server
type Server struct {
	config     *Config
	httpServer *http.Server
	upgrader   websocket.Upgrader

	logs      []RequestLog
	logsMutex sync.RWMutex

	healthChecks  atomic.Int64
	packets       atomic.Int64
	failedPackets atomic.Int64
	badPackets    atomic.Int64
	websockets    atomic.Int64
	frames        atomic.Int64
}

// NewServer creates a new stand-in server
func NewServer(config *Config) *Server {
	if config.Port == 0 {
		config.Port = 8080
	}
	if config.Host == "" {
		config.Host = "localhost"
	}
	if config.HealthStatus == 0 {
		config.HealthStatus = http.StatusOK
	}

	return &Server{
		config: config,
		logs:   make([]RequestLog, 0),
	}
}

// Handler returns the request router, for embedding in another server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+HealthPath, s.handleHealth)
	mux.HandleFunc("POST "+PacketPath, s.handlePacket)
	mux.HandleFunc("GET "+WebSocketPath, s.handleWebSocket)
	return mux
}

// Start listens on the configured address and serves in the background
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.Address())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Address(), err)
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.S().Errorf("Mock server error: %v", err)
		}
	}()

	zap.S().Infof("Mock server listening on http://%s", s.Address())
	return nil
}

// Stop stops the server, waiting up to 5 seconds for open requests
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s.healthChecks.Add(1)
	w.WriteHeader(s.config.HealthStatus)
	s.logRequest(r, -1, s.config.HealthStatus, start)
}

func (s *Server) handlePacket(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var packet keepAlive
	if err := json.NewDecoder(r.Body).Decode(&packet); err != nil || packet.Type == "" {
		s.badPackets.Add(1)
		http.Error(w, "malformed packet", http.StatusBadRequest)
		s.logRequest(r, -1, http.StatusBadRequest, start)
		return
	}

	if s.config.Delay > 0 {
		time.Sleep(s.config.Delay)
	}

	n := s.packets.Add(1)
	status := http.StatusOK
	if s.config.FailEvery > 0 && n%int64(s.config.FailEvery) == 0 {
		s.failedPackets.Add(1)
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"type":"ack","connection_id":%d}`, packet.ConnectionID)
	s.logRequest(r, packet.ConnectionID, status, start)
}

// handleWebSocket echoes every frame back to the client
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Debugf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	s.websockets.Add(1)
	s.logRequest(r, -1, http.StatusSwitchingProtocols, start)

	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if s.config.Delay > 0 {
			time.Sleep(s.config.Delay)
		}
		s.frames.Add(1)
		if err := conn.WriteMessage(mt, msg); err != nil {
			return
		}
	}
}

// logRequest adds a request to the log
func (s *Server) logRequest(r *http.Request, connectionID, status int, start time.Time) {
	if !s.config.Logging {
		return
	}

	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logs = append(s.logs, RequestLog{
		Timestamp:    start,
		Method:       r.Method,
		Path:         r.URL.Path,
		ConnectionID: connectionID,
		Status:       status,
		Duration:     time.Since(start),
	})

	// Keep only the most recent entries
	if len(s.logs) > maxLogs {
		s.logs = s.logs[len(s.logs)-maxLogs:]
	}
}

// GetLogs returns a copy of the logged requests
func (s *Server) GetLogs() []RequestLog {
	s.logsMutex.RLock()
	defer s.logsMutex.RUnlock()

	logs := make([]RequestLog, len(s.logs))
	copy(logs, s.logs)
	return logs
}

// Stats returns the request counters
func (s *Server) Stats() Stats {
	return Stats{
		HealthChecks:   s.healthChecks.Load(),
		Packets:        s.packets.Load(),
		FailedPackets:  s.failedPackets.Load(),
		BadPackets:     s.badPackets.Load(),
		WebSockets:     s.websockets.Load(),
		WebSocketFrame: s.frames.Load(),
	}
}

// Address returns the host:port the server listens on
func (s *Server) Address() string {
	return net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
}
