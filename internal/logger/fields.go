package logger

import (
	"fmt"
	"log/slog"
)

// Standard field keys for structured logging across the probe runtime.
// Using these consistently keeps log lines greppable and lets a coordinator's
// log aggregation pick out a given asset/check/frame without parsing prose.
const (
	// ========================================================================
	// Asset / check identity
	// ========================================================================
	KeyZoneID      = "zone_id"
	KeyAssetID     = "asset_id"
	KeyCollectorID = "collector_id"
	KeyAssetName   = "asset_name"
	KeyCheckName   = "check_name"
	KeyInterval    = "interval"
	KeySeverity    = "severity"

	// ========================================================================
	// Link / wire protocol
	// ========================================================================
	KeyFrameType = "frame_type"
	KeyPID       = "pid"
	KeyPartID    = "partid"
	KeyTotal     = "total"

	// ========================================================================
	// Connection supervisor
	// ========================================================================
	KeyHost = "host"
	KeyPort = "port"
	KeyStep = "step"

	// ========================================================================
	// Operation metadata
	// ========================================================================
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyAttempt    = "attempt"
)

// ZoneID returns a slog.Attr for the zone id component of a path.
func ZoneID(id int64) slog.Attr {
	return slog.Int64(KeyZoneID, id)
}

// AssetID returns a slog.Attr for the asset id component of a path.
func AssetID(id int64) slog.Attr {
	return slog.Int64(KeyAssetID, id)
}

// CollectorID returns a slog.Attr for the collector id component of a path.
func CollectorID(id int64) slog.Attr {
	return slog.Int64(KeyCollectorID, id)
}

// CheckName returns a slog.Attr for the check's name.
func CheckName(name string) slog.Attr {
	return slog.String(KeyCheckName, name)
}

// AssetName returns a slog.Attr for the asset's name.
func AssetName(name string) slog.Attr {
	return slog.String(KeyAssetName, name)
}

// FrameType returns a slog.Attr for a wire frame type, formatted as hex.
func FrameType(t uint8) slog.Attr {
	return slog.String(KeyFrameType, fmt.Sprintf("0x%02x", t))
}

// PID returns a slog.Attr for a pending-request correlation id.
func PID(pid uint16) slog.Attr {
	return slog.Int(KeyPID, int(pid))
}

// Err returns a slog.Attr for an error value, or an empty attr (which
// handlers skip) for a nil error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}
