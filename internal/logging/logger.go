package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger with key/value convenience methods
type Logger struct {
	zl     zerolog.Logger
	fields map[string]interface{} // Store fields for With()
}

var (
	// Global logger instance
	global *Logger
)

func init() {
	global = NewDevelopment()
}

// NewDevelopment creates a development logger with pretty console output on stderr
func NewDevelopment() *Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return NewWithWriter(output, zerolog.DebugLevel)
}

// NewWithWriter creates a logger with custom writer
func NewWithWriter(w io.Writer, level zerolog.Level) *Logger {
	zl := zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &Logger{
		zl:     zl,
		fields: make(map[string]interface{}),
	}
}

// NewNop returns a logger that discards everything
func NewNop() *Logger {
	return &Logger{
		zl:     zerolog.Nop(),
		fields: make(map[string]interface{}),
	}
}

// SetGlobal sets the global logger instance
func SetGlobal(logger *Logger) {
	global = logger
}

// Global returns the global logger instance
func Global() *Logger {
	return global
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields ...interface{}) {
	l.write(l.zl.Debug(), msg, fields)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields ...interface{}) {
	l.write(l.zl.Info(), msg, fields)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields ...interface{}) {
	l.write(l.zl.Warn(), msg, fields)
}

// Error logs an error message
func (l *Logger) Error(msg string, fields ...interface{}) {
	l.write(l.zl.Error(), msg, fields)
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(msg string, fields ...interface{}) {
	l.write(l.zl.Fatal(), msg, fields)
}

// write adds stored and call-site fields to e and sends it. Fields are
// alternating key/value pairs; a trailing key without value is dropped.
func (l *Logger) write(e *zerolog.Event, msg string, fields []interface{}) {
	if e == nil {
		return
	}
	for k, v := range l.fields {
		addField(e, k, v)
	}
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		addField(e, key, fields[i+1])
	}
	e.Msg(msg)
}

func addField(e *zerolog.Event, key string, value interface{}) {
	switch v := value.(type) {
	case error:
		e.Str(key, v.Error())
	case time.Duration:
		e.Dur(key, v)
	default:
		e.Interface(key, v)
	}
}

// With creates a child logger with additional fields
func (l *Logger) With(fields ...interface{}) *Logger {
	newFields := make(map[string]interface{}, len(l.fields)+len(fields)/2)

	for k, v := range l.fields {
		newFields[k] = v
	}

	for i := 0; i+1 < len(fields); i += 2 {
		if key, ok := fields[i].(string); ok {
			newFields[key] = fields[i+1]
		}
	}

	return &Logger{
		zl:     l.zl,
		fields: newFields,
	}
}

// WithContext returns a logger with context fields
func (l *Logger) WithContext(ctx context.Context) *Logger {
	fields := extractContextFields(ctx)
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

// Global convenience functions

// Debug logs a debug message using global logger
func Debug(msg string, fields ...interface{}) {
	global.Debug(msg, fields...)
}

// Info logs an info message using global logger
func Info(msg string, fields ...interface{}) {
	global.Info(msg, fields...)
}

// Warn logs a warning message using global logger
func Warn(msg string, fields ...interface{}) {
	global.Warn(msg, fields...)
}

// Error logs an error message using global logger
func Error(msg string, fields ...interface{}) {
	global.Error(msg, fields...)
}

// Fatal logs a fatal message and exits using global logger
func Fatal(msg string, fields ...interface{}) {
	global.Fatal(msg, fields...)
}
