package account

import (
	"math"

	"main/internal/exchange"
	"main/internal/model"
	"main/internal/model/enum"
)

// Snapshot couples the derived account view with the immutable raw
// exchange state it was computed from. Live recomputation always starts
// from the raw state, never from previously derived output.
type Snapshot struct {
	model.AccountSnapshot

	raw exchange.ClearinghouseState
}

// ProcessSnapshot derives the normalized account view from a raw exchange
// state, the per-timeframe history series and optional fresh mid prices.
//
// The raw snapshot's account value already embeds unrealized PnL computed
// against its own mark prices; adding fresh PnL on top would double-count
// it. The correction subtracts the embedded stale figure before adding the
// freshly computed one:
//
//	accountValue = base + (freshOpenPnl - staleOpenPnl)
func ProcessSnapshot(history map[enum.Timeframe][]model.HistoryPoint, state exchange.ClearinghouseState, mids map[string]float64) Snapshot {
	positions, totals := derivePositions(state, mids)
	accountValue := exchange.Float(state.MarginSummary.AccountValue) + totals.openPnl - totals.stalePnl

	pnlHistory := make(map[enum.Timeframe]model.TimeframePnl, len(history))
	for timeframe, points := range history {
		first := earliestValue(points)
		pnlHistory[timeframe] = timeframePnl(first, accountValue)
	}

	return Snapshot{
		AccountSnapshot: model.AccountSnapshot{
			AccountValue: accountValue,
			TotalOpenPnl: totals.openPnl,
			TotalNtlPos:  totals.ntlPos,
			Positions:    positions,
			PnlHistory:   pnlHistory,
			RawHistory:   history,
		},
		raw: state,
	}
}

// ComputeLivePnL re-derives the view from the snapshot's original raw
// state combined with fresh mids. Each timeframe keeps its first anchor
// unchanged; only last/pnl/pnlPct move. This lets price ticks update the
// view at stream frequency without refetching anything.
func ComputeLivePnL(prev Snapshot, mids map[string]float64) Snapshot {
	positions, totals := derivePositions(prev.raw, mids)
	accountValue := exchange.Float(prev.raw.MarginSummary.AccountValue) + totals.openPnl - totals.stalePnl

	pnlHistory := make(map[enum.Timeframe]model.TimeframePnl, len(prev.PnlHistory))
	for timeframe, entry := range prev.PnlHistory {
		pnlHistory[timeframe] = timeframePnl(entry.First, accountValue)
	}

	return Snapshot{
		AccountSnapshot: model.AccountSnapshot{
			AccountValue: accountValue,
			TotalOpenPnl: totals.openPnl,
			TotalNtlPos:  totals.ntlPos,
			Positions:    positions,
			PnlHistory:   pnlHistory,
			RawHistory:   prev.RawHistory,
		},
		raw: prev.raw,
	}
}

type positionTotals struct {
	openPnl  float64
	ntlPos   float64
	stalePnl float64
}

func derivePositions(state exchange.ClearinghouseState, mids map[string]float64) ([]model.Position, positionTotals) {
	var totals positionTotals
	positions := make([]model.Position, 0, len(state.AssetPositions))

	for _, entry := range state.AssetPositions {
		raw := entry.Position
		size := exchange.Float(raw.Szi)
		entryPx := exchange.Float(raw.EntryPx)
		mark := resolveMarkPrice(raw, size, entryPx, mids)

		unrealized := (mark - entryPx) * size
		positionValue := math.Abs(size) * mark

		livePnlPct := 0.0
		if entryPx != 0 {
			livePnlPct = (mark - entryPx) / entryPx * 100
			if size < 0 {
				livePnlPct = -livePnlPct
			}
		}

		positions = append(positions, model.Position{
			Symbol:           raw.Coin,
			Size:             size,
			EntryPrice:       entryPx,
			MarkPrice:        mark,
			UnrealizedPnl:    unrealized,
			LivePnlPct:       livePnlPct,
			Leverage:         raw.Leverage.Value,
			LiquidationPrice: exchange.Float(raw.LiquidationPx),
			MarginUsed:       exchange.Float(raw.MarginUsed),
			PositionValue:    positionValue,
			ROE:              exchange.Float(raw.ReturnOnEquity),
		})

		totals.openPnl += unrealized
		totals.ntlPos += positionValue
		totals.stalePnl += exchange.Float(raw.UnrealizedPnl)
	}

	return positions, totals
}

// resolveMarkPrice falls through the price priority chain: live mid, the
// mark implied by the snapshot's own position value, then entry price.
func resolveMarkPrice(raw exchange.RawPosition, size, entryPx float64, mids map[string]float64) float64 {
	if mid, ok := mids[raw.Coin]; ok && mid > 0 {
		return mid
	}
	if size != 0 {
		if value := exchange.Float(raw.PositionValue); value > 0 {
			return value / math.Abs(size)
		}
	}
	return entryPx
}

func earliestValue(points []model.HistoryPoint) float64 {
	if len(points) == 0 {
		return 0
	}

	earliest := points[0]
	for _, point := range points[1:] {
		if point.TimeMs < earliest.TimeMs {
			earliest = point
		}
	}
	return earliest.Value
}

func timeframePnl(first, last float64) model.TimeframePnl {
	pnl := last - first
	pnlPct := 0.0
	if first > 0 {
		pnlPct = pnl / first * 100
	}
	return model.TimeframePnl{First: first, Last: last, Pnl: pnl, PnlPct: pnlPct}
}
