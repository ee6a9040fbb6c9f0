package stresstest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

const (
	// HTTP client configuration timeouts
	TCPDialTimeout        = 5 * time.Second
	TCPKeepAliveInterval  = 30 * time.Second
	IdleConnTimeout       = 90 * time.Second
	ExpectContinueTimeout = 1 * time.Second

	HealthPath = "/health"
	PacketPath = "/packet"
)

// HTTPDriver simulates sessions with plain HTTP: GET /health to connect and
// POST /packet for every keep-alive.
type HTTPDriver struct {
	baseURL string
	timeout time.Duration
}

func NewHTTPDriver(cfg Config) *HTTPDriver {
	return &HTTPDriver{
		baseURL: "http://" + cfg.HTTPAddr(),
		timeout: cfg.RequestTimeout,
	}
}

func (d *HTTPDriver) Name() string { return DriverHTTP }

// NewSession gives every session its own transport so that each one holds a
// distinct TCP connection, like a real client would.
func (d *HTTPDriver) NewSession(id int) Session {
	transport := &http.Transport{
		MaxIdleConns:          1,
		MaxIdleConnsPerHost:   1,
		MaxConnsPerHost:       1,
		IdleConnTimeout:       IdleConnTimeout,
		ResponseHeaderTimeout: d.timeout,
		ExpectContinueTimeout: ExpectContinueTimeout,
		DialContext: (&net.Dialer{
			Timeout:   TCPDialTimeout,
			KeepAlive: TCPKeepAliveInterval,
		}).DialContext,
	}
	return &httpSession{
		id:        id,
		baseURL:   d.baseURL,
		transport: transport,
		client:    &http.Client{Timeout: d.timeout, Transport: transport},
	}
}

type httpSession struct {
	id        int
	baseURL   string
	transport *http.Transport
	client    *http.Client
}

func (s *httpSession) Connect(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+HealthPath, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return s.do(req)
}

func (s *httpSession) KeepAlive(ctx context.Context) (bool, error) {
	body, err := json.Marshal(newKeepAlive(s.id))
	if err != nil {
		return false, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+PacketPath, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if err := s.do(req); err != nil {
		return false, err
	}
	return true, nil
}

// do executes req and drains the body so the connection can be reused
func (s *httpSession) do(req *http.Request) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s %s returned %d", ErrUnexpectedStatus, req.Method, req.URL.Path, resp.StatusCode)
	}
	return nil
}

func (s *httpSession) Close() error {
	s.transport.CloseIdleConnections()
	return nil
}
