package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// LocalSettingsFile is looked up in the current directory before the global one
	LocalSettingsFile = ".benchops.yaml"

	// EnvPrefix is the prefix for environment overrides (BENCHOPS_REGRESSION_THRESHOLD, ...)
	EnvPrefix = "BENCHOPS_"
)

var (
	// ConfigDir is the global configuration directory (~/.benchops)
	ConfigDir string

	// DatabasePath is the SQLite database file for benchmark and load test history
	DatabasePath string

	// SettingsFile is the global settings file (~/.benchops/config.yaml)
	SettingsFile string
)

// Settings holds every tunable of the four utilities. Zero values are never used
// directly: Load starts from Defaults and layers the YAML file and env vars on top.
type Settings struct {
	Compare  CompareSettings  `yaml:"compare" envPrefix:"COMPARE_"`
	Charts   ChartSettings    `yaml:"charts" envPrefix:"CHARTS_"`
	Nightly  NightlySettings  `yaml:"nightly" envPrefix:"NIGHTLY_"`
	LoadTest LoadTestSettings `yaml:"loadtest" envPrefix:"LOADTEST_"`
	Logger   LoggerSettings   `yaml:"logger" envPrefix:"LOG_"`

	HistoryEnabled bool   `yaml:"history_enabled" env:"HISTORY_ENABLED"`
	DatabasePath   string `yaml:"database_path" env:"DATABASE_PATH"`
}

type CompareSettings struct {
	BaselinePath string  `yaml:"baseline_path" env:"BASELINE_PATH"`
	ReportPath   string  `yaml:"report_path" env:"REPORT_PATH"`
	Threshold    float64 `yaml:"threshold" env:"THRESHOLD"`
}

type ChartSettings struct {
	OutputDir string  `yaml:"output_dir" env:"OUTPUT_DIR"`
	Threshold float64 `yaml:"threshold" env:"THRESHOLD"`
}

// NightlySettings lists the well-known result files the nightly report reads.
type NightlySettings struct {
	OutputDir          string   `yaml:"output_dir" env:"OUTPUT_DIR"`
	TestResultsFiles   []string `yaml:"test_results_files" env:"TEST_RESULTS_FILES" envSeparator:","`
	BenchmarkFile      string   `yaml:"benchmark_file" env:"BENCHMARK_FILE"`
	CoverageFile       string   `yaml:"coverage_file" env:"COVERAGE_FILE"`
	SecurityAuditFile  string   `yaml:"security_audit_file" env:"SECURITY_AUDIT_FILE"`
	CompatibilityFiles []string `yaml:"compatibility_files" env:"COMPATIBILITY_FILES" envSeparator:","`
}

type LoadTestSettings struct {
	Host           string        `yaml:"host" env:"HOST"`
	Port           int           `yaml:"port" env:"PORT"`
	HTTPPort       int           `yaml:"http_port" env:"HTTP_PORT"`
	Connections    int           `yaml:"connections" env:"CONNECTIONS"`
	Duration       time.Duration `yaml:"duration" env:"DURATION"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`
	Driver         string        `yaml:"driver" env:"DRIVER"`
	ResultsFile    string        `yaml:"results_file" env:"RESULTS_FILE"`
	ReportFile     string        `yaml:"report_file" env:"REPORT_FILE"`
}

type LoggerSettings struct {
	Mode     string `yaml:"mode" env:"MODE"` // "development" or "production"
	Filename string `yaml:"filename" env:"FILE"`
	Verbose  bool   `yaml:"verbose" env:"VERBOSE"`
}

// Defaults returns the settings used when nothing else is configured.
// The values mirror what the CI pipeline has always used.
func Defaults() *Settings {
	return &Settings{
		Compare: CompareSettings{
			BaselinePath: "baseline_benchmarks.json",
			ReportPath:   "benchmark_report.md",
			Threshold:    0.05,
		},
		Charts: ChartSettings{
			OutputDir: "benchmark_charts",
			Threshold: 0.05,
		},
		Nightly: NightlySettings{
			OutputDir:          ".",
			TestResultsFiles:   []string{"test_results.json", "test_output.txt"},
			BenchmarkFile:      "benchmark_results.json",
			CoverageFile:       "lcov.info",
			SecurityAuditFile:  "audit.json",
			CompatibilityFiles: []string{"compatibility_results.json", "migration_test_results.json"},
		},
		LoadTest: LoadTestSettings{
			Host:           "localhost",
			Port:           19132,
			HTTPPort:       8080,
			Connections:    100,
			Duration:       60 * time.Second,
			RequestTimeout: 10 * time.Second,
			Driver:         "http",
			ResultsFile:    "load_test_results.json",
			ReportFile:     "load_test_report.md",
		},
		Logger: LoggerSettings{
			Mode: "development",
		},
		HistoryEnabled: true,
	}
}

// Initialize sets up the configuration directory
// It creates ~/.benchops/ if it doesn't exist
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	ConfigDir = filepath.Join(homeDir, ".benchops")
	DatabasePath = filepath.Join(ConfigDir, "benchops.db")
	SettingsFile = filepath.Join(ConfigDir, "config.yaml")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	return nil
}

// Load builds the effective settings: defaults, then the settings file, then
// BENCHOPS_* environment variables. An explicit path must exist; the implicit
// lookup (local file, then global file) silently falls back to defaults.
func Load(path string) (*Settings, error) {
	settings := Defaults()

	if path == "" {
		path = GetSettingsFilePath()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("settings file %s: %w", path, err)
	}

	if path != "" {
		if err := settings.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := env.ParseWithOptions(settings, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment overrides: %w", err)
	}

	if settings.DatabasePath == "" {
		settings.DatabasePath = DatabasePath
	}
	settings.DatabasePath = ExpandHome(settings.DatabasePath)

	return settings, settings.Validate()
}

func (s *Settings) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	return nil
}

// Validate rejects settings that would make a utility misbehave silently
func (s *Settings) Validate() error {
	if s.Compare.Threshold <= 0 || s.Compare.Threshold >= 1 {
		return fmt.Errorf("compare threshold must be between 0 and 1, got %v", s.Compare.Threshold)
	}
	if s.Charts.Threshold <= 0 || s.Charts.Threshold >= 1 {
		return fmt.Errorf("charts threshold must be between 0 and 1, got %v", s.Charts.Threshold)
	}
	if s.LoadTest.Connections <= 0 {
		return fmt.Errorf("loadtest connections must be greater than 0")
	}
	if s.LoadTest.Duration < 0 {
		return fmt.Errorf("loadtest duration cannot be negative")
	}
	return nil
}

// GetSettingsFilePath returns the settings file path (local or global).
// Returns "" when neither exists.
func GetSettingsFilePath() string {
	if _, err := os.Stat(LocalSettingsFile); err == nil {
		return LocalSettingsFile
	}
	if SettingsFile != "" {
		if _, err := os.Stat(SettingsFile); err == nil {
			return SettingsFile
		}
	}
	return ""
}

// ExpandHome expands a leading ~/ to the user's home directory
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, path[2:])
}

// EnsureDir creates dir (and parents) with the default permissions
func EnsureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}
