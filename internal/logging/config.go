package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/peekdata/datagateway-go/internal/config"
)

// NewFromConfig creates a logger from configuration. Every extra writer
// receives the same events as the configured output.
func NewFromConfig(cfg config.LoggingConfig, extra ...io.Writer) (*Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	output, err := openOutput(cfg.OutputPath)
	if err != nil {
		return nil, err
	}

	if cfg.Format == "console" || cfg.Format == "pretty" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: getTimeFormat(cfg.TimeFormat),
		}
	}

	if len(extra) > 0 {
		writers := append([]io.Writer{output}, extra...)
		output = zerolog.MultiLevelWriter(writers...)
	}

	return NewWithWriter(output, level), nil
}

func openOutput(outputPath string) (io.Writer, error) {
	switch outputPath {
	case "stdout":
		return os.Stdout, nil
	case "stderr", "":
		return os.Stderr, nil
	}

	logDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}

	file, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", outputPath, err)
	}
	return file, nil
}

// getTimeFormat converts string to time format
func getTimeFormat(format string) string {
	switch format {
	case "Unix":
		return time.UnixDate
	case "Kitchen":
		return time.Kitchen
	default:
		return time.RFC3339
	}
}
