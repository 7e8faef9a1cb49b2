package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. DATAGATEWAY_GATEWAY_HOST
const EnvPrefix = "DATAGATEWAY"

// Load loads configuration from file. Values from a .env file in the working
// directory are exported first so they take part in env overrides.
func Load(configPath string) (*Config, error) {
	// A missing .env is the normal case
	_ = godotenv.Load()

	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/datagateway")
	}

	setDefaults(v)

	// gateway.host -> DATAGATEWAY_GATEWAY_HOST
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("gateway.scheme", d.Gateway.Scheme)
	v.SetDefault("gateway.host", d.Gateway.Host)
	v.SetDefault("gateway.port", d.Gateway.Port)
	v.SetDefault("gateway.timeout", d.Gateway.Timeout)
	v.SetDefault("gateway.api_key", d.Gateway.APIKey)

	v.SetDefault("output.csv_file", d.Output.CSVFile)
	v.SetDefault("output.log_file", d.Output.LogFile)

	v.SetDefault("mock.host", d.Mock.Host)
	v.SetDefault("mock.port", d.Mock.Port)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output_path", d.Logging.OutputPath)
	v.SetDefault("logging.time_format", d.Logging.TimeFormat)
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads configuration from file or returns default config
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Gateway: GatewayConfig{
			Scheme: "http",
			Host:   "demo.peekdata.io",
			Port:   8080,
		},
		Output: OutputConfig{
			CSVFile: "client_example_output.csv",
			LogFile: "client_example.log",
		},
		Mock: MockConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stderr",
			TimeFormat: "RFC3339",
		},
	}
}
