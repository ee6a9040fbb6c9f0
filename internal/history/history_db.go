package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/studiowebux/benchops/internal/migrations"
)

// Manager persists benchmark comparison history
type Manager struct {
	db *sql.DB
}

// NewManager opens the history database at dbPath
func NewManager(dbPath string) (*Manager, error) {
	db, err := migrations.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return &Manager{db: db}, nil
}

// Close closes the database connection
func (m *Manager) Close() error {
	return m.db.Close()
}

// SaveBenchmarkRun stores a run and its comparisons in one transaction.
// run.ID is set on success.
func (m *Manager) SaveBenchmarkRun(run *BenchmarkRun, records []ComparisonRecord) error {
	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	result, err := tx.Exec(`
		INSERT INTO benchmark_runs
		(started_at, current_file, baseline_file, threshold, total, regressions, improvements, stable, promoted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.StartedAt, run.CurrentFile, run.BaselineFile, run.Threshold, run.Total,
		run.Regressions, run.Improvements, run.Stable, run.Promoted)
	if err != nil {
		return fmt.Errorf("failed to insert benchmark run: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO benchmark_comparisons
		(run_id, name, current_value, baseline_value, change_percent, classification)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.Exec(id, rec.Name, rec.CurrentValue, rec.BaselineValue, rec.ChangePercent, rec.Classification); err != nil {
			return fmt.Errorf("failed to insert comparison %s: %w", rec.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit benchmark run: %w", err)
	}
	run.ID = id
	return nil
}

// ListBenchmarkRuns returns the most recent runs first
func (m *Manager) ListBenchmarkRuns(limit int) ([]*BenchmarkRun, error) {
	query := `
		SELECT id, started_at, current_file, baseline_file, threshold, total,
		       regressions, improvements, stable, promoted
		FROM benchmark_runs
		ORDER BY started_at DESC, id DESC
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := m.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list benchmark runs: %w", err)
	}
	defer rows.Close()

	var runs []*BenchmarkRun
	for rows.Next() {
		run := &BenchmarkRun{}
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.CurrentFile, &run.BaselineFile, &run.Threshold,
			&run.Total, &run.Regressions, &run.Improvements, &run.Stable, &run.Promoted); err != nil {
			return nil, fmt.Errorf("failed to scan benchmark run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetComparisons returns the stored comparisons of one run in insertion order
func (m *Manager) GetComparisons(runID int64) ([]ComparisonRecord, error) {
	rows, err := m.db.Query(`
		SELECT run_id, name, current_value, baseline_value, change_percent, classification
		FROM benchmark_comparisons
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load comparisons: %w", err)
	}
	defer rows.Close()

	var records []ComparisonRecord
	for rows.Next() {
		var rec ComparisonRecord
		if err := rows.Scan(&rec.RunID, &rec.Name, &rec.CurrentValue, &rec.BaselineValue,
			&rec.ChangePercent, &rec.Classification); err != nil {
			return nil, fmt.Errorf("failed to scan comparison: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// MetricHistory returns up to limit points for one measurement, oldest first
func (m *Manager) MetricHistory(name string, limit int) ([]MetricPoint, error) {
	query := `
		SELECT c.run_id, r.started_at, c.current_value, c.change_percent, c.classification
		FROM benchmark_comparisons c
		JOIN benchmark_runs r ON r.id = c.run_id
		WHERE c.name = ?
		ORDER BY c.run_id DESC
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := m.db.Query(query, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load metric history: %w", err)
	}
	defer rows.Close()

	var points []MetricPoint
	for rows.Next() {
		var p MetricPoint
		if err := rows.Scan(&p.RunID, &p.Timestamp, &p.Value, &p.ChangePercent, &p.Classification); err != nil {
			return nil, fmt.Errorf("failed to scan metric point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points, nil
}

// MetricNames returns every measurement name that has recorded history
func (m *Manager) MetricNames() ([]string, error) {
	rows, err := m.db.Query(`SELECT DISTINCT name FROM benchmark_comparisons ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list metric names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan metric name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
