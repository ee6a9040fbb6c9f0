package mock

import (
	"fmt"
	"net/http"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads a stand-in server configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

// validateConfig validates the stand-in server configuration
func validateConfig(config *Config) error {
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535, got %d", config.Port)
	}
	if config.Delay < 0 {
		return fmt.Errorf("delay cannot be negative")
	}
	if config.FailEvery < 0 {
		return fmt.Errorf("fail_every cannot be negative")
	}
	if config.HealthStatus != 0 && http.StatusText(config.HealthStatus) == "" {
		return fmt.Errorf("unknown health status %d", config.HealthStatus)
	}
	return nil
}
