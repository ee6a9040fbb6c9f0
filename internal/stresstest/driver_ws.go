package stresstest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketPath is the endpoint the websocket driver dials
const WebSocketPath = "/ws"

// WebSocketDriver keeps one websocket per session. A keep-alive is a JSON
// frame that the server is expected to echo.
type WebSocketDriver struct {
	url     string
	timeout time.Duration
}

func NewWebSocketDriver(cfg Config) *WebSocketDriver {
	return &WebSocketDriver{
		url:     "ws://" + cfg.HTTPAddr() + WebSocketPath,
		timeout: cfg.RequestTimeout,
	}
}

func (d *WebSocketDriver) Name() string { return DriverWebSocket }

func (d *WebSocketDriver) NewSession(id int) Session {
	return &wsSession{
		id:  id,
		url: d.url,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: d.timeout,
		},
		timeout: d.timeout,
	}
}

type wsSession struct {
	id      int
	url     string
	dialer  *websocket.Dialer
	timeout time.Duration
	conn    *websocket.Conn
}

func (s *wsSession) Connect(ctx context.Context) error {
	conn, resp, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("%w: websocket handshake returned %d: %v", ErrUnexpectedStatus, resp.StatusCode, err)
		}
		return err
	}
	s.conn = conn
	return nil
}

func (s *wsSession) KeepAlive(ctx context.Context) (bool, error) {
	if s.conn == nil {
		return false, fmt.Errorf("websocket session %d is not connected", s.id)
	}

	deadline := time.Now().Add(s.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	// closing the conn unblocks a pending write or read once ctx is done
	conn := s.conn
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	s.conn.SetWriteDeadline(deadline)
	if err := s.conn.WriteJSON(newKeepAlive(s.id)); err != nil {
		return false, fmt.Errorf("failed to send keep-alive: %w", contextCause(ctx, err))
	}

	s.conn.SetReadDeadline(deadline)
	if _, _, err := s.conn.ReadMessage(); err != nil {
		return false, fmt.Errorf("failed to read keep-alive reply: %w", contextCause(ctx, err))
	}
	return true, nil
}

func (s *wsSession) Close() error {
	if s.conn == nil {
		return nil
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return s.conn.Close()
}

// contextCause prefers ctx's error over the closed-conn error it provoked
func contextCause(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}
