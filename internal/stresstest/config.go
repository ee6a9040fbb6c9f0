package stresstest

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

const (
	DefaultPort              = 19132
	DefaultHTTPPort          = 8080
	DefaultConnections       = 100
	DefaultDuration          = 60 * time.Second
	DefaultKeepAliveInterval = 100 * time.Millisecond
	DefaultMaxSessionErrors  = 10
	DefaultStaggerEvery      = 10
	DefaultStaggerPause      = 100 * time.Millisecond
	DefaultRequestTimeout    = 10 * time.Second

	// MaxConnections caps a single run
	MaxConnections = 10000
)

// Config represents a load test configuration
type Config struct {
	Host string
	// Port is the game port reported as the target. The stand-in drivers
	// talk to HTTPPort instead.
	Port     int
	HTTPPort int

	Connections int
	Duration    time.Duration

	KeepAliveInterval time.Duration
	MaxSessionErrors  int // a session stops once it has this many errors
	StaggerEvery      int // pause after every StaggerEvery-th launch
	StaggerPause      time.Duration
	RequestTimeout    time.Duration

	Driver string // "http" or "websocket"
}

// DefaultConfig returns the configuration used by CI
func DefaultConfig() Config {
	return Config{
		Host:              "localhost",
		Port:              DefaultPort,
		HTTPPort:          DefaultHTTPPort,
		Connections:       DefaultConnections,
		Duration:          DefaultDuration,
		KeepAliveInterval: DefaultKeepAliveInterval,
		MaxSessionErrors:  DefaultMaxSessionErrors,
		StaggerEvery:      DefaultStaggerEvery,
		StaggerPause:      DefaultStaggerPause,
		RequestTimeout:    DefaultRequestTimeout,
		Driver:            DriverHTTP,
	}
}

// withDefaults fills zero-valued tunables
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Host == "" {
		c.Host = d.Host
	}
	if c.Port == 0 {
		c.Port = d.Port
	}
	if c.HTTPPort == 0 {
		c.HTTPPort = d.HTTPPort
	}
	if c.KeepAliveInterval == 0 {
		c.KeepAliveInterval = d.KeepAliveInterval
	}
	if c.MaxSessionErrors == 0 {
		c.MaxSessionErrors = d.MaxSessionErrors
	}
	if c.StaggerEvery == 0 {
		c.StaggerEvery = d.StaggerEvery
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = d.RequestTimeout
	}
	if c.Driver == "" {
		c.Driver = d.Driver
	}
	return c
}

// Validate validates the load test configuration
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("http port must be between 1 and 65535, got %d", c.HTTPPort)
	}
	if c.Connections <= 0 {
		return fmt.Errorf("connections must be greater than 0")
	}
	if c.Connections > MaxConnections {
		return fmt.Errorf("connections cannot exceed %d", MaxConnections)
	}
	if c.Duration < 0 {
		return fmt.Errorf("duration cannot be negative")
	}
	if c.KeepAliveInterval < 0 || c.StaggerPause < 0 {
		return fmt.Errorf("intervals cannot be negative")
	}
	if c.MaxSessionErrors <= 0 {
		return fmt.Errorf("max session errors must be greater than 0")
	}
	if c.StaggerEvery <= 0 {
		return fmt.Errorf("stagger interval must be greater than 0")
	}
	switch c.Driver {
	case DriverHTTP, DriverWebSocket:
	default:
		return fmt.Errorf("unknown driver %q (want %s or %s)", c.Driver, DriverHTTP, DriverWebSocket)
	}
	return nil
}

// Target is the reported host:port of the server under test
func (c *Config) Target() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// HTTPAddr is the host:port the stand-in drivers connect to
func (c *Config) HTTPAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.HTTPPort))
}
