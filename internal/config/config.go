package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Gateway GatewayConfig `mapstructure:"gateway"`
	Output  OutputConfig  `mapstructure:"output"`
	Mock    MockConfig    `mapstructure:"mock"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// GatewayConfig is the address of the DataGateway API the client talks to
type GatewayConfig struct {
	Scheme  string        `mapstructure:"scheme"`  // http or https
	Host    string        `mapstructure:"host"`    // e.g. demo.peekdata.io
	Port    int           `mapstructure:"port"`    // e.g. 8080
	Timeout time.Duration `mapstructure:"timeout"` // 0 keeps the transport default
	APIKey  string        `mapstructure:"api_key"` // sent as X-API-Key when set
}

// OutputConfig holds the files written by the walkthrough command
type OutputConfig struct {
	CSVFile string `mapstructure:"csv_file"` // target of the get-csv call
	LogFile string `mapstructure:"log_file"` // truncated on every run
}

// MockConfig is the bind address of the stub gateway
type MockConfig struct {
	Host    string   `mapstructure:"host"`
	Port    int      `mapstructure:"port"`
	APIKeys []string `mapstructure:"api_keys"` // auth is enabled when non-empty
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, Kitchen
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Gateway.Validate(); err != nil {
		return fmt.Errorf("gateway config: %w", err)
	}

	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output config: %w", err)
	}

	if err := c.Mock.Validate(); err != nil {
		return fmt.Errorf("mock config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates gateway configuration
func (c *GatewayConfig) Validate() error {
	if c.Scheme != "http" && c.Scheme != "https" {
		return fmt.Errorf("gateway.scheme must be 'http' or 'https'")
	}

	if c.Host == "" {
		return fmt.Errorf("gateway.host is required")
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid gateway.port: %d", c.Port)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("gateway.timeout cannot be negative")
	}

	return nil
}

// Validate validates output configuration
func (c *OutputConfig) Validate() error {
	if c.CSVFile == "" {
		return fmt.Errorf("output.csv_file is required")
	}

	if c.LogFile == "" {
		return fmt.Errorf("output.log_file is required")
	}

	if c.CSVFile == c.LogFile {
		return fmt.Errorf("output.csv_file and output.log_file cannot be the same")
	}

	return nil
}

// Validate validates mock server configuration
func (c *MockConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid mock.port: %d", c.Port)
	}

	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}
