package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"main/internal/model/enum"
)

func row(symbol, metadata string, executedAt time.Time) Row {
	return Row{
		AgentID:    "agent-1",
		Symbol:     symbol,
		ExecutedAt: executedAt,
		Metadata:   metadata,
	}
}

func TestBuildPositionsOpenOnly(t *testing.T) {
	opened := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	rows := []Row{
		row("BTC", `{"position_id":"P1","action":"open_long","collateral":1000,"leverage":5,"entry_price":50000}`, opened),
	}

	positions := BuildPositionsFromLedger(rows)
	if len(positions) != 1 {
		t.Fatalf("expected one position, got %d", len(positions))
	}

	p := positions[0]
	if p.Status != enum.PositionStatusOpen {
		t.Fatalf("status = %v, want open", p.Status)
	}
	if p.Side != enum.SideLong {
		t.Fatalf("side = %v, want long", p.Side)
	}
	if p.Size != 5000 {
		t.Fatalf("size = %v, want 5000", p.Size)
	}
	if p.Quantity != 0.1 {
		t.Fatalf("quantity = %v, want 0.1", p.Quantity)
	}
	if !p.EntryTimestamp.Equal(opened) {
		t.Fatalf("entry timestamp = %v, want %v", p.EntryTimestamp, opened)
	}
}

func TestBuildPositionsOpenClosePair(t *testing.T) {
	opened := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	closed := opened.Add(6 * time.Hour)
	rows := []Row{
		row("BTC", `{"position_id":"P1","action":"open_long","collateral":1000,"leverage":5,"entry_price":50000}`, opened),
		{
			AgentID:     "agent-1",
			Symbol:      "BTC",
			Price:       decimal.NewFromInt(55000),
			ExecutedAt:  closed,
			RealizedPnl: decimal.NewNullDecimal(decimal.NewFromInt(500)),
			Metadata:    `{"position_id":"P1","action":"close_long"}`,
		},
	}

	positions := BuildPositionsFromLedger(rows)
	if len(positions) != 1 {
		t.Fatalf("expected one position, got %d", len(positions))
	}

	p := positions[0]
	if p.Status != enum.PositionStatusClosed {
		t.Fatalf("status = %v, want closed", p.Status)
	}
	if p.ExitPrice != 55000 {
		t.Fatalf("exit price = %v, want 55000 from the close row", p.ExitPrice)
	}
	if !p.ExitTimestamp.Equal(closed) {
		t.Fatalf("exit timestamp = %v, want %v", p.ExitTimestamp, closed)
	}
	if p.RealizedPnl != 500 {
		t.Fatalf("realized pnl = %v, want 500", p.RealizedPnl)
	}
}

func TestBuildPositionsOrphanCloseDropped(t *testing.T) {
	rows := []Row{
		row("BTC", `{"position_id":"P9","action":"close_long","exit_price":55000}`, time.Now()),
	}

	if positions := BuildPositionsFromLedger(rows); len(positions) != 0 {
		t.Fatalf("orphan close must produce nothing, got %d positions", len(positions))
	}
}

func TestBuildPositionsSkipsRowsWithoutPositionID(t *testing.T) {
	rows := []Row{
		row("BTC", `{"action":"open_long","collateral":100}`, time.Now()),
		row("ETH", ``, time.Now()),
		row("SOL", `not json at all`, time.Now()),
	}

	if positions := BuildPositionsFromLedger(rows); len(positions) != 0 {
		t.Fatalf("rows without position_id must be skipped, got %d", len(positions))
	}
}

func TestBuildPositionsSortedByEntryDescending(t *testing.T) {
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.AddDate(0, 0, 5)
	rows := []Row{
		row("BTC", `{"position_id":"P1","action":"open","opened_at":"`+older.Format(time.RFC3339)+`"}`, older),
		row("ETH", `{"position_id":"P2","action":"open","opened_at":"`+newer.Format(time.RFC3339)+`"}`, newer),
		row("SOL", `{"position_id":"P3","action":"open"}`, time.Time{}),
	}

	positions := BuildPositionsFromLedger(rows)
	if len(positions) != 3 {
		t.Fatalf("expected three positions, got %d", len(positions))
	}
	if positions[0].Asset != "ETH" || positions[1].Asset != "BTC" {
		t.Fatalf("wrong order: %s, %s", positions[0].Asset, positions[1].Asset)
	}
	if positions[2].Asset != "SOL" {
		t.Fatalf("position without a recoverable timestamp must sort last, got %s", positions[2].Asset)
	}
}

func TestBuildPositionsQuantityGuard(t *testing.T) {
	rows := []Row{
		{
			AgentID:    "agent-1",
			Symbol:     "BTC",
			Quantity:   decimal.NewFromFloat(0.25),
			ExecutedAt: time.Now(),
			Metadata:   `{"position_id":"P1","action":"open","collateral":1000,"leverage":5}`,
		},
	}

	positions := BuildPositionsFromLedger(rows)
	if len(positions) != 1 {
		t.Fatalf("expected one position, got %d", len(positions))
	}
	// Entry price unrecoverable: quantity falls back to the row scalar
	// instead of dividing by zero.
	if positions[0].Quantity != 0.25 {
		t.Fatalf("quantity = %v, want the row fallback 0.25", positions[0].Quantity)
	}
}

func TestBuildPositionsShortSideFromAction(t *testing.T) {
	rows := []Row{
		row("BTC", `{"position_id":"P1","action":"open_short","collateral":100,"leverage":2,"entry_price":50000}`, time.Now()),
	}

	positions := BuildPositionsFromLedger(rows)
	if positions[0].Side != enum.SideShort {
		t.Fatalf("side = %v, want short inferred from action", positions[0].Side)
	}
}

func TestFilterPositionsByStatus(t *testing.T) {
	now := time.Now()
	rows := []Row{
		row("BTC", `{"position_id":"P1","action":"open","entry_price":50000,"collateral":100}`, now),
		row("ETH", `{"position_id":"P2","action":"open","entry_price":3000,"collateral":100}`, now),
		row("ETH", `{"position_id":"P2","action":"close","exit_price":3100}`, now.Add(time.Hour)),
	}

	positions := BuildPositionsFromLedger(rows)
	if open := FilterOpenPositions(positions); len(open) != 1 || open[0].ID != "P1" {
		t.Fatalf("open filter mismatch: %+v", open)
	}
	if closed := FilterClosedPositions(positions); len(closed) != 1 || closed[0].ID != "P2" {
		t.Fatalf("closed filter mismatch: %+v", closed)
	}
}
