package logging

import (
	"context"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
)

// WithLogger adds a logger to the context
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from context, falls back to global
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerKey).(*Logger); ok {
		return logger
	}
	return global
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext returns the request ID stored in ctx, if any
func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDKey).(string)
	return requestID
}

func extractContextFields(ctx context.Context) []interface{} {
	var fields []interface{}

	if requestID := RequestIDFromContext(ctx); requestID != "" {
		fields = append(fields, "request_id", requestID)
	}

	return fields
}

// DebugCtx logs a debug message with context
func DebugCtx(ctx context.Context, msg string, fields ...interface{}) {
	FromContext(ctx).WithContext(ctx).Debug(msg, fields...)
}

// WarnCtx logs a warning message with context
func WarnCtx(ctx context.Context, msg string, fields ...interface{}) {
	FromContext(ctx).WithContext(ctx).Warn(msg, fields...)
}

// ErrorCtx logs an error message with context
func ErrorCtx(ctx context.Context, msg string, fields ...interface{}) {
	FromContext(ctx).WithContext(ctx).Error(msg, fields...)
}
