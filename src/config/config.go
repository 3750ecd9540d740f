package config

import (
	"fmt"
	"os"

	"platform-observer/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Environment override keys. The platform runs against different backend
// deployments; the base URLs are the only values operators override per host.
const (
	EnvAPIBaseURL = "API_BASE_URL"
	EnvSocketURL  = "WS_URL"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()
	config.applyEnvOverrides()

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// NewDefaultConfig returns a config with all defaults applied and no file
// read. Used by tests and by `-config ""` runs against a local backend.
func NewDefaultConfig() *Config {
	config := &Config{MConfig: &models.MConfig{Name: "platform-observer"}}
	config.applyDefaults()
	config.applyEnvOverrides()
	return config
}

// -----------------------------------------------------------------------------

// applyDefaults fills in zero-valued fields with the platform defaults.
func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = "http://localhost:8000/api/v1"
	}
	if c.API.RequestTimeout <= 0 {
		c.API.RequestTimeout = 10
	}
	if c.API.MaxRetries <= 0 {
		c.API.MaxRetries = 3
	}
	if c.API.RetryDelayMs <= 0 {
		c.API.RetryDelayMs = 1000
	}
	if c.Socket.URL == "" {
		c.Socket.URL = "ws://localhost:8000/ws"
	}
	if c.Socket.ReconnectIntervalMs <= 0 {
		c.Socket.ReconnectIntervalMs = 5000
	}
	if c.Socket.MaxReconnectAttempts <= 0 {
		c.Socket.MaxReconnectAttempts = 10
	}
	if c.Polling.IntervalSeconds <= 0 {
		c.Polling.IntervalSeconds = 30
	}
	if c.Polling.OffHoursIntervalSeconds <= 0 {
		c.Polling.OffHoursIntervalSeconds = 300
	}
	if c.Storage.DBType == "" {
		c.Storage.DBType = "sqlite"
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		c.Storage.DBPath = "platform-observer.db"
	}
	if c.Storage.CacheDurationMinutes <= 0 {
		c.Storage.CacheDurationMinutes = 5
	}
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8090
	}
	if c.Export.Directory == "" {
		c.Export.Directory = "exports"
	}
	if c.Updates.MaxEntries <= 0 {
		c.Updates.MaxEntries = 50
	}
}

// -----------------------------------------------------------------------------

// applyEnvOverrides lets the environment win over the YAML file for the
// two backend endpoints.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvAPIBaseURL); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvSocketURL); v != "" {
		c.Socket.URL = v
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Validate API configuration
	if c.API.BaseURL == "" {
		return fmt.Errorf("api base url cannot be empty")
	}
	if c.API.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.API.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}

	// Validate Socket configuration
	if c.Socket.URL == "" {
		return fmt.Errorf("socket url cannot be empty")
	}
	if c.Socket.MaxReconnectAttempts <= 0 {
		return fmt.Errorf("max reconnect attempts must be greater than 0")
	}

	// Validate Storage configuration
	if c.Storage.DBType != "sqlite" && c.Storage.DBType != "postgres" {
		return fmt.Errorf("unknown database type: %s", c.Storage.DBType)
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		return fmt.Errorf("database path cannot be empty for sqlite")
	}
	if c.Storage.DBType == "postgres" && c.Storage.DBConnectionString == "" {
		return fmt.Errorf("connection string cannot be empty for postgres")
	}

	// Validate Server configuration
	if c.Server.Port <= 1024 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Server.Port)
	}

	if c.Updates.MaxEntries <= 0 {
		return fmt.Errorf("updates max entries must be greater than 0")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
