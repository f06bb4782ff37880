package model

import "main/internal/model/enum"

// HistoryPoint is one raw (timestamp, account value) sample of a portfolio
// history window.
type HistoryPoint struct {
	TimeMs int64
	Value  float64
}

// TimeframePnl is the derived PnL figure for one history window. First is
// anchored at snapshot time and survives live recomputation unchanged.
type TimeframePnl struct {
	First  float64
	Last   float64
	Pnl    float64
	PnlPct float64
}

// AccountSnapshot is the derived account view: equity, live positions and
// per-timeframe PnL. RawHistory keeps the unmodified upstream series so the
// view can be re-derived from ticks without refetching.
type AccountSnapshot struct {
	AccountValue float64
	TotalOpenPnl float64
	TotalNtlPos  float64
	Positions    []Position
	PnlHistory   map[enum.Timeframe]TimeframePnl
	RawHistory   map[enum.Timeframe][]HistoryPoint
}
