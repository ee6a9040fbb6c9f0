package stresstest

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	DriverHTTP      = "http"
	DriverWebSocket = "websocket"
)

// ErrUnexpectedStatus is returned by drivers when the server answers with a non-200 status
var ErrUnexpectedStatus = errors.New("unexpected status")

// Driver creates client sessions against the server under test. It is the
// seam where the real wire protocol replaces the stand-in transports.
type Driver interface {
	Name() string
	NewSession(id int) Session
}

// Session is one simulated client connection. A session is used by a single
// goroutine.
type Session interface {
	// Connect establishes the session. It is called once.
	Connect(ctx context.Context) error
	// KeepAlive sends one keep-alive packet. received reports whether the
	// server acknowledged it.
	KeepAlive(ctx context.Context) (received bool, err error)
	Close() error
}

// KeepAlivePacket is the payload sent on every keep-alive
type KeepAlivePacket struct {
	Type         string  `json:"type"`
	Timestamp    float64 `json:"timestamp"`
	ConnectionID int     `json:"connection_id"`
}

func newKeepAlive(id int) KeepAlivePacket {
	return KeepAlivePacket{
		Type:         "keep_alive",
		Timestamp:    float64(time.Now().UnixNano()) / 1e9,
		ConnectionID: id,
	}
}

// NewDriver builds the driver selected by cfg.Driver
func NewDriver(cfg Config) (Driver, error) {
	cfg = cfg.withDefaults()
	switch cfg.Driver {
	case DriverHTTP:
		return NewHTTPDriver(cfg), nil
	case DriverWebSocket:
		return NewWebSocketDriver(cfg), nil
	}
	return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
}
