package logger

import (
	"context"
	"log/slog"
	"time"
)

// ContextKey is the type for context keys used in logging
type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	OperationKey ContextKey = "operation"

	// Business context keys, prefixed per OpenTelemetry attribute naming
	SearchUserIDKey ContextKey = "search.user_id"
	ArticleURLKey   ContextKey = "news.article.url"
	CycleIDKey      ContextKey = "news.ingest.cycle_id"
	IngestStageKey  ContextKey = "news.ingest.stage"
)

var contextKeys = []ContextKey{
	RequestIDKey,
	OperationKey,
	SearchUserIDKey,
	ArticleURLKey,
	CycleIDKey,
	IngestStageKey,
}

// GlobalContext is the global ContextLogger instance
var GlobalContext *ContextLogger

// ContextLogger wraps a slog.Logger to add context-aware logging
type ContextLogger struct {
	logger *slog.Logger
}

// NewContextLogger creates a new ContextLogger wrapping the provided logger.
// A nil logger falls back to slog.Default().
func NewContextLogger(logger *slog.Logger) *ContextLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContextLogger{logger: logger}
}

// WithContext adds context values to log entries and returns a new logger
func (cl *ContextLogger) WithContext(ctx context.Context) *slog.Logger {
	args := make([]any, 0, 2*len(contextKeys))
	for _, key := range contextKeys {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			args = append(args, string(key), v)
		}
	}
	return cl.logger.With(args...)
}

// LogDuration logs an operation completion with duration in milliseconds
func (cl *ContextLogger) LogDuration(ctx context.Context, operation string, durationMs int64) {
	cl.WithContext(ctx).Info("operation completed",
		"operation", operation,
		"duration_ms", durationMs,
	)
}

// LogError logs an operation failure with error details
func (cl *ContextLogger) LogError(ctx context.Context, operation string, err error) {
	cl.WithContext(ctx).Error("operation failed",
		"operation", operation,
		"error", err,
	)
}

// LogDurationTime is a convenience function that takes time.Duration
func (cl *ContextLogger) LogDurationTime(ctx context.Context, operation string, duration time.Duration) {
	cl.LogDuration(ctx, operation, duration.Milliseconds())
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, OperationKey, operation)
}

func WithSearchUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, SearchUserIDKey, userID)
}

func WithArticleURL(ctx context.Context, url string) context.Context {
	return context.WithValue(ctx, ArticleURLKey, url)
}

func WithCycleID(ctx context.Context, cycleID string) context.Context {
	return context.WithValue(ctx, CycleIDKey, cycleID)
}

func WithIngestStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, IngestStageKey, stage)
}

// FromContext returns a logger carrying the context's business keys.
// It uses GlobalContext when initialized and slog.Default() otherwise.
func FromContext(ctx context.Context) *slog.Logger {
	if GlobalContext != nil {
		return GlobalContext.WithContext(ctx)
	}
	return NewContextLogger(nil).WithContext(ctx)
}
