package mock

import "time"

// Config represents the stand-in server configuration
type Config struct {
	Port         int           `yaml:"port"`          // Server port (default: 8080)
	Host         string        `yaml:"host"`          // Server host (default: localhost)
	Delay        time.Duration `yaml:"delay"`         // Added before every keep-alive reply
	FailEvery    int           `yaml:"fail_every"`    // Answer every n-th packet with 500 (0 disables)
	HealthStatus int           `yaml:"health_status"` // Status of /health (default: 200)
	Logging      bool          `yaml:"logging"`       // Keep a log of recent requests
}

// Stats counts what the server has seen since it started
type Stats struct {
	HealthChecks   int64 `json:"health_checks"`
	Packets        int64 `json:"packets"`
	FailedPackets  int64 `json:"failed_packets"`
	BadPackets     int64 `json:"bad_packets"`
	WebSockets     int64 `json:"websockets"`
	WebSocketFrame int64 `json:"websocket_frames"`
}

// RequestLog represents a logged request
type RequestLog struct {
	Timestamp    time.Time     `json:"timestamp"`
	Method       string        `json:"method"`
	Path         string        `json:"path"`
	ConnectionID int           `json:"connection_id"`
	Status       int           `json:"status"`
	Duration     time.Duration `json:"duration"`
}
