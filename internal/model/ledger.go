package model

import (
	"time"

	"main/internal/model/enum"
)

// LedgerPosition is a discrete trade reconstructed from open/close ledger
// rows. It is computed fresh on every query and never cached.
type LedgerPosition struct {
	ID             string
	Asset          string
	Side           enum.Side
	Status         enum.PositionStatus
	Size           float64
	Collateral     float64
	Quantity       float64
	EntryPrice     float64
	ExitPrice      float64
	EntryTimestamp time.Time
	ExitTimestamp  time.Time
	Leverage       float64
	RealizedPnl    float64
}
