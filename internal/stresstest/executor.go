package stresstest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SessionResult is what one simulated connection produced. It is written once
// by the session's own goroutine and read only after all sessions finished.
type SessionResult struct {
	SessionID       int            `json:"connection_id"`
	ConnectTime     time.Duration  `json:"connect_time"`
	TotalTime       time.Duration  `json:"total_time"`
	PacketsSent     int            `json:"packets_sent"`
	PacketsReceived int            `json:"packets_received"`
	Errors          int            `json:"errors"`
	Connected       bool           `json:"connected"`
	Success         bool           `json:"success"`
	ErrorsByKind    map[string]int `json:"errors_by_kind,omitempty"`
}

func (r *SessionResult) recordError(err error) {
	r.Errors++
	if r.ErrorsByKind == nil {
		r.ErrorsByKind = make(map[string]int)
	}
	r.ErrorsByKind[CategorizeError(err)]++
}

// RunResult is a finished load test
type RunResult struct {
	ID          string
	Target      string
	Driver      string
	StartedAt   time.Time
	CompletedAt time.Time
	Sessions    []SessionResult
	Summary     Summary
	Verdict     Verdict
}

// Executor runs a load test: one goroutine per session, launched with a
// short pause after every StaggerEvery-th launch, joined before aggregation.
type Executor struct {
	config Config
	driver Driver

	// MemoryUsage samples process memory once all sessions finished
	MemoryUsage func() float64
}

// NewExecutor validates cfg and creates an executor using driver
func NewExecutor(cfg Config, driver Driver) (*Executor, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if driver == nil {
		return nil, fmt.Errorf("driver is required")
	}
	return &Executor{
		config:      cfg,
		driver:      driver,
		MemoryUsage: ProcessMemoryMB,
	}, nil
}

// Config returns the effective configuration
func (e *Executor) Config() Config {
	return e.config
}

// Run launches every session and waits for all of them. Cancelling ctx makes
// running sessions stop at their next check; their results are still counted.
func (e *Executor) Run(ctx context.Context) (*RunResult, error) {
	cfg := e.config
	zap.S().Infof("Starting load test: %d connections for %s against %s (%s driver)",
		cfg.Connections, cfg.Duration, cfg.Target(), e.driver.Name())

	run := &RunResult{
		ID:        uuid.NewString(),
		Target:    cfg.Target(),
		Driver:    e.driver.Name(),
		StartedAt: time.Now(),
		Sessions:  make([]SessionResult, cfg.Connections),
	}

	var g errgroup.Group
	for i := 0; i < cfg.Connections; i++ {
		g.Go(func() error {
			run.Sessions[i] = e.runSession(ctx, i)
			return nil
		})

		if i > 0 && i%cfg.StaggerEvery == 0 {
			sleepContext(ctx, cfg.StaggerPause)
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	run.CompletedAt = time.Now()
	memory := 0.0
	if e.MemoryUsage != nil {
		memory = e.MemoryUsage()
	}
	run.Summary = Aggregate(run.Sessions, run.CompletedAt.Sub(run.StartedAt), memory)
	run.Verdict = Assess(run.Summary)

	zap.S().Infof("Load test finished: %d/%d sessions successful (%s)",
		run.Summary.SuccessfulConnections, run.Summary.TotalConnections, run.Verdict)
	return run, nil
}

// runSession drives one session: a single connect attempt, then keep-alives
// every KeepAliveInterval until Duration has elapsed since the session started
// or MaxSessionErrors errors were counted. A panic ends the session and counts
// as one error.
func (e *Executor) runSession(ctx context.Context, id int) (res SessionResult) {
	cfg := e.config
	start := time.Now()
	res.SessionID = id

	var session Session
	defer func() {
		if r := recover(); r != nil {
			zap.S().Errorf("Connection %d panicked: %v", id, r)
			res.recordError(errPanic{value: r})
		}
		if session != nil {
			session.Close()
		}
		res.TotalTime = time.Since(start)
		res.Success = res.Connected && res.Errors < cfg.MaxSessionErrors
	}()

	session = e.driver.NewSession(id)

	connectStart := time.Now()
	if err := session.Connect(ctx); err != nil {
		zap.S().Debugf("Connection %d failed to connect: %v", id, err)
		res.recordError(err)
		return res
	}
	res.ConnectTime = time.Since(connectStart)
	res.Connected = true

	deadline := start.Add(cfg.Duration)
	for time.Now().Before(deadline) && res.Errors < cfg.MaxSessionErrors {
		if ctx.Err() != nil {
			break
		}

		received, err := session.KeepAlive(ctx)
		if err != nil && ctx.Err() != nil {
			// cancelled mid keep-alive
			break
		}
		if err != nil {
			res.recordError(err)
			if res.Errors >= cfg.MaxSessionErrors {
				zap.S().Debugf("Connection %d reached %d errors, giving up", id, res.Errors)
				break
			}
		} else {
			res.PacketsSent++
			if received {
				res.PacketsReceived++
			}
		}

		if !sleepContext(ctx, cfg.KeepAliveInterval) {
			break
		}
	}
	return res
}

// sleepContext waits for d or until ctx is done. It reports whether the full
// duration elapsed.
func sleepContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
