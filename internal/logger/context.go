package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds check-scoped logging context. It is attached to the
// context passed into a check-task's loop so every log line emitted while
// running a check carries its asset/check identity without threading those
// values through every call.
type LogContext struct {
	ZoneID      int64
	AssetID     int64
	CollectorID int64
	AssetName   string
	CheckName   string
	StartTime   time.Time // for duration calculation
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext for one check task.
func NewLogContext(zoneID, assetID, collectorID int64, assetName, checkName string) *LogContext {
	return &LogContext{
		ZoneID:      zoneID,
		AssetID:     assetID,
		CollectorID: collectorID,
		AssetName:   assetName,
		CheckName:   checkName,
		StartTime:   time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	clone := *lc
	return &clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
