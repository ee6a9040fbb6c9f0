package stresstest

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/studiowebux/benchops/internal/migrations"
)

// StoredRun is a load test run as persisted in the history database
type StoredRun struct {
	ID             int64
	RunUUID        string
	Target         string
	Driver         string
	StartedAt      time.Time
	CompletedAt    time.Time
	Summary        Summary
	Verdict        Verdict
	ErrorBreakdown map[string]int
}

// Manager handles load test persistence
type Manager struct {
	db *sql.DB
}

// NewManager opens the history database at dbPath
func NewManager(dbPath string) (*Manager, error) {
	db, err := migrations.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("stresstest: %w", err)
	}
	return &Manager{db: db}, nil
}

// Close closes the database connection
func (m *Manager) Close() error {
	return m.db.Close()
}

// SaveRun stores a finished run and all of its sessions in one transaction
func (m *Manager) SaveRun(run *RunResult) (int64, error) {
	tx, err := m.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var breakdown sql.NullString
	if len(run.Summary.ErrorBreakdown) > 0 {
		data, err := json.Marshal(run.Summary.ErrorBreakdown)
		if err != nil {
			return 0, fmt.Errorf("failed to encode error breakdown: %w", err)
		}
		breakdown = sql.NullString{String: string(data), Valid: true}
	}

	s := run.Summary
	result, err := tx.Exec(`
		INSERT INTO load_test_runs
		(run_uuid, target, driver, started_at, completed_at, total_connections, successful_connections,
		 failed_connections, total_duration_sec, avg_connect_time_sec, avg_response_time_sec,
		 packets_per_second, errors_per_second, memory_usage_mb, verdict, error_breakdown)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Target, run.Driver, run.StartedAt, run.CompletedAt, s.TotalConnections,
		s.SuccessfulConnections, s.FailedConnections, s.TotalDuration, s.AvgConnectTime,
		s.AvgResponseTime, s.PacketsPerSecond, s.ErrorsPerSecond, s.MemoryUsageMB,
		string(run.Verdict), breakdown)
	if err != nil {
		return 0, fmt.Errorf("failed to insert load test run: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO load_test_sessions
		(run_id, session_id, connect_time_sec, total_time_sec, packets_sent, packets_received, errors, success, connected)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, sess := range run.Sessions {
		if _, err := stmt.Exec(id, sess.SessionID, sess.ConnectTime.Seconds(), sess.TotalTime.Seconds(),
			sess.PacketsSent, sess.PacketsReceived, sess.Errors, sess.Success, sess.Connected); err != nil {
			return 0, fmt.Errorf("failed to insert session %d: %w", sess.SessionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit load test run: %w", err)
	}
	return id, nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all runs.
func (m *Manager) ListRuns(limit int) ([]*StoredRun, error) {
	query := `
		SELECT id, run_uuid, target, driver, started_at, completed_at, total_connections,
		       successful_connections, failed_connections, total_duration_sec, avg_connect_time_sec,
		       avg_response_time_sec, packets_per_second, errors_per_second, memory_usage_mb,
		       COALESCE(verdict, ''), error_breakdown
		FROM load_test_runs
		ORDER BY started_at DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := m.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list load test runs: %w", err)
	}
	defer rows.Close()

	var runs []*StoredRun
	for rows.Next() {
		r := &StoredRun{}
		var completed sql.NullTime
		var verdict string
		var breakdown sql.NullString
		if err := rows.Scan(&r.ID, &r.RunUUID, &r.Target, &r.Driver, &r.StartedAt, &completed,
			&r.Summary.TotalConnections, &r.Summary.SuccessfulConnections, &r.Summary.FailedConnections,
			&r.Summary.TotalDuration, &r.Summary.AvgConnectTime, &r.Summary.AvgResponseTime,
			&r.Summary.PacketsPerSecond, &r.Summary.ErrorsPerSecond, &r.Summary.MemoryUsageMB,
			&verdict, &breakdown); err != nil {
			return nil, fmt.Errorf("failed to scan load test run: %w", err)
		}
		if completed.Valid {
			r.CompletedAt = completed.Time
		}
		r.Verdict = Verdict(verdict)
		if breakdown.Valid && breakdown.String != "" {
			if err := json.Unmarshal([]byte(breakdown.String), &r.ErrorBreakdown); err != nil {
				return nil, fmt.Errorf("failed to decode error breakdown of run %d: %w", r.ID, err)
			}
			r.Summary.ErrorBreakdown = r.ErrorBreakdown
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetSessions returns the sessions of a stored run ordered by session id
func (m *Manager) GetSessions(runID int64) ([]SessionResult, error) {
	rows, err := m.db.Query(`
		SELECT session_id, connect_time_sec, total_time_sec, packets_sent, packets_received, errors, success, connected
		FROM load_test_sessions
		WHERE run_id = ?
		ORDER BY session_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionResult
	for rows.Next() {
		var s SessionResult
		var connect, total float64
		if err := rows.Scan(&s.SessionID, &connect, &total, &s.PacketsSent, &s.PacketsReceived, &s.Errors, &s.Success, &s.Connected); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		s.ConnectTime = secondsToDuration(connect)
		s.TotalTime = secondsToDuration(total)
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func secondsToDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}
