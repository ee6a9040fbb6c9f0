package stresstest

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"
)

// Error categories used in the per-run error breakdown
const (
	ErrorCancelled         = "cancelled"
	ErrorTimeout           = "timeout"
	ErrorConnectionRefused = "connection_refused"
	ErrorConnectionReset   = "connection_reset"
	ErrorDNS               = "dns"
	ErrorUnreachable       = "network_unreachable"
	ErrorTLS               = "tls"
	ErrorClosed            = "connection_closed"
	ErrorUnexpectedStatus  = "unexpected_status"
	ErrorPanic             = "panic"
	ErrorOther             = "other"
)

// errPanic wraps a value recovered from a session goroutine
type errPanic struct {
	value any
}

func (e errPanic) Error() string {
	return fmt.Sprintf("session panicked: %v", e.value)
}

// CategorizeError maps a session error to one of the breakdown categories
func CategorizeError(err error) string {
	if err == nil {
		return ""
	}

	var p errPanic
	if errors.As(err, &p) {
		return ErrorPanic
	}
	if errors.Is(err, ErrUnexpectedStatus) {
		return ErrorUnexpectedStatus
	}
	if errors.Is(err, context.Canceled) {
		return ErrorCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTimeout
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return ErrorTimeout
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return ErrorTimeout
		}
		var errno syscall.Errno
		if errors.As(opErr.Err, &errno) {
			switch errno {
			case syscall.ECONNREFUSED:
				return ErrorConnectionRefused
			case syscall.ECONNRESET:
				return ErrorConnectionReset
			case syscall.ENETUNREACH, syscall.EHOSTUNREACH:
				return ErrorUnreachable
			}
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ErrorDNS
	}

	return categorizeErrorString(err.Error())
}

// categorizeErrorString is the fallback for errors that lost their type
func categorizeErrorString(errStr string) string {
	errLower := strings.ToLower(errStr)

	switch {
	case strings.Contains(errLower, "context canceled"):
		return ErrorCancelled
	case strings.Contains(errLower, "deadline exceeded"),
		strings.Contains(errLower, "timeout"),
		strings.Contains(errLower, "timed out"):
		return ErrorTimeout
	case strings.Contains(errLower, "no such host"),
		strings.Contains(errLower, "dial tcp: lookup"):
		return ErrorDNS
	case strings.Contains(errLower, "connection refused"):
		return ErrorConnectionRefused
	case strings.Contains(errLower, "connection reset"),
		strings.Contains(errLower, "broken pipe"):
		return ErrorConnectionReset
	case strings.Contains(errLower, "network is unreachable"),
		strings.Contains(errLower, "no route to host"):
		return ErrorUnreachable
	case strings.Contains(errLower, "tls"),
		strings.Contains(errLower, "x509"),
		strings.Contains(errLower, "certificate"):
		return ErrorTLS
	case strings.Contains(errLower, "eof"),
		strings.Contains(errLower, "close 1"),
		strings.Contains(errLower, "use of closed"):
		return ErrorClosed
	}
	return ErrorOther
}
