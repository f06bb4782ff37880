package model

// Position is a live derived position. It is recomputed wholesale on every
// snapshot pass and never mutated field by field.
type Position struct {
	Symbol           string
	Size             float64 // signed; negative means short
	EntryPrice       float64
	MarkPrice        float64
	UnrealizedPnl    float64
	LivePnlPct       float64
	Leverage         float64
	LiquidationPrice float64
	MarginUsed       float64
	PositionValue    float64
	ROE              float64
}

// Direction returns +1 for long, -1 for short and 0 for flat.
func (p Position) Direction() float64 {
	switch {
	case p.Size > 0:
		return 1
	case p.Size < 0:
		return -1
	default:
		return 0
	}
}
