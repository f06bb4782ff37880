package enum

// ConnState is the lifecycle state of the persistent connection.
type ConnState uint8

const (
	_conn_state_beg ConnState = iota
	ConnStateConnecting
	ConnStateConnected
	ConnStateDisconnected
	_conn_state_end
)

func (s ConnState) IsAvailable() bool {
	return s > _conn_state_beg && s < _conn_state_end
}

func (s ConnState) String() string {
	switch s {
	case ConnStateConnecting:
		return "CONNECTING"
	case ConnStateConnected:
		return "CONNECTED"
	case ConnStateDisconnected:
		return "DISCONNECTED"
	default:
		return "UNKNOWN"
	}
}

// SignalQuality buckets a round-trip latency for connectivity indicators.
type SignalQuality uint8

const (
	_signal_quality_beg SignalQuality = iota
	SignalStrong
	SignalModerate
	SignalWeak
	_signal_quality_end
)

func (q SignalQuality) String() string {
	switch q {
	case SignalStrong:
		return "STRONG"
	case SignalModerate:
		return "MODERATE"
	case SignalWeak:
		return "WEAK"
	default:
		return "UNKNOWN"
	}
}
