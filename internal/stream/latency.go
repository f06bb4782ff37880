package stream

import "main/internal/model/enum"

// Latency buckets for the connectivity indicator, in milliseconds.
const (
	latencyStrongMs   = 150
	latencyModerateMs = 400
)

// QualityOf buckets a probe round trip into the indicator levels. A
// negative latency means no probe has completed yet.
func QualityOf(latencyMs int64) enum.SignalQuality {
	switch {
	case latencyMs < 0:
		return 0
	case latencyMs <= latencyStrongMs:
		return enum.SignalStrong
	case latencyMs <= latencyModerateMs:
		return enum.SignalModerate
	default:
		return enum.SignalWeak
	}
}
