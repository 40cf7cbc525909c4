package log

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// StructuredLogger writes the fixed-shape events dashboards and alerts
// key on.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

func (sl *StructuredLogger) LogHTTPStart(ctx context.Context, r *http.Request, clientIP string) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"), r.Header.Get("Referer")).
		WithClientIP(clientIP)

	sl.logger.InfoContext(ctx, "HTTP request started", fields.ToSlice()...)
}

// LogHTTPEnd logs at Warn for 4xx and Error for 5xx.
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	switch {
	case statusCode >= 500:
		level = slog.LevelError
	case statusCode >= 400:
		level = slog.LevelWarn
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", "").
		WithHTTPResponse(statusCode, durationMs, statusCode < 400).
		WithClientIP(clientIP)

	sl.logger.Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogContributionRecorded(ctx context.Context, orgID, id string, amountCents int64, fund string) {
	fields := NewFields().
		WithContribution(id, amountCents, fund).
		WithOrg(orgID).
		WithOperation(OpCreate)

	sl.logger.InfoContext(ctx, "Contribution recorded", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogSnapshotBuilt(ctx context.Context, orgID string, took time.Duration) {
	fields := NewFields().
		WithOrg(orgID).
		WithOperation(OpBuild)
	fields[FieldDuration] = took.Milliseconds()

	sl.logger.DebugContext(ctx, "Snapshot built", fields.ToSlice()...)
}

// LogSnapshotFailed records the failing domain when err carries one.
func (sl *StructuredLogger) LogSnapshotFailed(ctx context.Context, orgID, domain string, err error) {
	fields := NewFields().
		WithOrg(orgID).
		WithOperation(OpBuild).
		WithError(err)
	if domain != "" {
		fields = fields.WithDomain(domain)
	}

	sl.logger.WarnContext(ctx, "Snapshot build failed", fields.ToSlice()...)
}

// LogCacheInvalidated logs a per-org invalidation, or a full purge when
// orgID is empty.
func (sl *StructuredLogger) LogCacheInvalidated(ctx context.Context, orgID string) {
	fields := NewFields().WithOperation(OpInvalidate)
	if orgID == "" {
		sl.logger.InfoContext(ctx, "Dashboard caches purged", fields.ToSlice()...)
		return
	}
	sl.logger.InfoContext(ctx, "Dashboard cache invalidated", fields.WithOrg(orgID).ToSlice()...)
}
