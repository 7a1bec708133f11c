package events

import (
	"context"
)

type contextKey int

const (
	loggerKey contextKey = iota
	conversionIDKey
)

// FromContext extracts logger from context.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerKey).(*Logger); ok && l != nil {
		return l
	}
	return defaultLogger
}

// WithLogger adds logger to context.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// WithConversionID tags the context and its logger with a conversion ID.
func WithConversionID(ctx context.Context, id string) context.Context {
	logger := FromContext(ctx).WithField("conversion_id", id)
	ctx = context.WithValue(ctx, conversionIDKey, id)
	return WithLogger(ctx, logger)
}

// GetConversionID retrieves the conversion ID from context.
func GetConversionID(ctx context.Context) string {
	if id, ok := ctx.Value(conversionIDKey).(string); ok {
		return id
	}
	return ""
}

var defaultLogger = NewNopLogger()

// SetDefault sets the default logger.
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
