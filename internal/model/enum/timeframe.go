package enum

// Timeframe keys a portfolio history window as reported upstream.
type Timeframe string

const (
	TimeframeDay     Timeframe = "day"
	TimeframeWeek    Timeframe = "week"
	TimeframeMonth   Timeframe = "month"
	TimeframeAllTime Timeframe = "allTime"
)

// Timeframes lists every window in display order.
func Timeframes() []Timeframe {
	return []Timeframe{TimeframeDay, TimeframeWeek, TimeframeMonth, TimeframeAllTime}
}

func (t Timeframe) IsAvailable() bool {
	switch t {
	case TimeframeDay, TimeframeWeek, TimeframeMonth, TimeframeAllTime:
		return true
	default:
		return false
	}
}
