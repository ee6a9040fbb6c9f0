package migrations

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Migration represents a single database migration
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// AllMigrations contains all database migrations in order
var AllMigrations = []Migration{
	{
		Version: 1,
		Name:    "Add lookup indices for history queries",
		Up: `
			CREATE INDEX IF NOT EXISTS idx_benchmark_comparisons_name ON benchmark_comparisons(name);
			CREATE INDEX IF NOT EXISTS idx_load_test_runs_target ON load_test_runs(target);
		`,
		Down: `
			DROP INDEX IF EXISTS idx_benchmark_comparisons_name;
			DROP INDEX IF EXISTS idx_load_test_runs_target;
		`,
	},
	{
		Version: 2,
		Name:    "Add composite index for per-metric trend queries",
		Up: `
			CREATE INDEX IF NOT EXISTS idx_benchmark_comparisons_name_run ON benchmark_comparisons(name, run_id DESC);
		`,
		Down: `
			DROP INDEX IF EXISTS idx_benchmark_comparisons_name_run;
		`,
	},
}

// InitSchema creates the benchmark and load test history tables
func InitSchema(db *sql.DB) error {
	schema := `
	-- Benchmark comparison history
	CREATE TABLE IF NOT EXISTS benchmark_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at DATETIME NOT NULL,
		current_file TEXT NOT NULL,
		baseline_file TEXT NOT NULL,
		threshold REAL NOT NULL,
		total INTEGER NOT NULL DEFAULT 0,
		regressions INTEGER NOT NULL DEFAULT 0,
		improvements INTEGER NOT NULL DEFAULT 0,
		stable INTEGER NOT NULL DEFAULT 0,
		promoted INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_benchmark_runs_started_at ON benchmark_runs(started_at DESC);

	CREATE TABLE IF NOT EXISTS benchmark_comparisons (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		current_value REAL NOT NULL,
		baseline_value REAL NOT NULL,
		change_percent REAL NOT NULL,
		classification TEXT NOT NULL,
		FOREIGN KEY (run_id) REFERENCES benchmark_runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_benchmark_comparisons_run_id ON benchmark_comparisons(run_id);

	-- Load test tables
	CREATE TABLE IF NOT EXISTS load_test_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_uuid TEXT NOT NULL UNIQUE,
		target TEXT NOT NULL,
		driver TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		completed_at DATETIME,
		total_connections INTEGER DEFAULT 0,
		successful_connections INTEGER DEFAULT 0,
		failed_connections INTEGER DEFAULT 0,
		total_duration_sec REAL DEFAULT 0,
		avg_connect_time_sec REAL DEFAULT 0,
		avg_response_time_sec REAL DEFAULT 0,
		packets_per_second REAL DEFAULT 0,
		errors_per_second REAL DEFAULT 0,
		memory_usage_mb REAL DEFAULT 0,
		error_breakdown TEXT,
		verdict TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_load_test_runs_started_at ON load_test_runs(started_at DESC);

	CREATE TABLE IF NOT EXISTS load_test_sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL,
		session_id INTEGER NOT NULL,
		connect_time_sec REAL NOT NULL,
		total_time_sec REAL NOT NULL,
		packets_sent INTEGER NOT NULL DEFAULT 0,
		packets_received INTEGER NOT NULL DEFAULT 0,
		errors INTEGER NOT NULL DEFAULT 0,
		connected INTEGER NOT NULL DEFAULT 0,
		success INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (run_id) REFERENCES load_test_runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_load_test_sessions_run_id ON load_test_sessions(run_id);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Run brings db up to date: it creates the base schema, then applies every
// migration newer than the recorded version, each in its own transaction.
func Run(db *sql.DB) error {
	if err := InitSchema(db); err != nil {
		return err
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	current, err := GetCurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range AllMigrations {
		if m.Version <= current {
			continue
		}
		if err := apply(db, m); err != nil {
			return err
		}
		zap.S().Debugf("Applied migration %d: %s", m.Version, m.Name)
	}
	return nil
}

func apply(db *sql.DB, m Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("migration %d: %w", m.Version, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.Up); err != nil {
		return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, m.Version, m.Name); err != nil {
		return fmt.Errorf("migration %d: failed to record: %w", m.Version, err)
	}
	return tx.Commit()
}

// GetCurrentVersion returns the highest applied migration, 0 for a fresh database
func GetCurrentVersion(db *sql.DB) (int, error) {
	var version sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_migrations`).Scan(&version); err != nil {
		return 0, err
	}
	return int(version.Int64), nil
}

// Open opens (creating if needed) the sqlite database at dbPath and brings its
// schema up to date. ":memory:" opens a private in-memory database.
func Open(dbPath string) (*sql.DB, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite allows a single writer; one connection also keeps :memory: databases shared
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}
