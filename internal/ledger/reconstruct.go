package ledger

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"main/internal/model"
	"main/internal/model/enum"
)

// Metadata keys recognized on ledger rows.
const (
	metaPositionID  = "position_id"
	metaAction      = "action"
	metaSide        = "side"
	metaLeverage    = "leverage"
	metaCollateral  = "collateral"
	metaEntryPrice  = "entry_price"
	metaExitPrice   = "exit_price"
	metaQuantity    = "quantity"
	metaSize        = "size"
	metaRealizedPnl = "realized_pnl"
	metaOpenedAt    = "opened_at"
	metaClosedAt    = "closed_at"
)

type rowGroup struct {
	open     *Row
	openMd   metadata
	closeRow *Row
	closeMd  metadata
}

// BuildPositionsFromLedger groups the append-only rows into discrete
// positions. A group without an OPEN row produces nothing: an orphan CLOSE
// is defined policy, not an error. Output is sorted by entry timestamp
// descending; rows whose timestamps cannot be recovered sort last.
func BuildPositionsFromLedger(rows []Row) []model.LedgerPosition {
	groups := make(map[string]*rowGroup)
	order := make([]string, 0, len(rows))

	for i := range rows {
		row := &rows[i]
		md := parseMetadata(row.Metadata)
		id := md.str(metaPositionID)
		if id == "" {
			continue
		}

		group, ok := groups[id]
		if !ok {
			group = &rowGroup{}
			groups[id] = group
			order = append(order, id)
		}

		action := strings.ToLower(md.str(metaAction))
		switch {
		case strings.Contains(action, "open"):
			if group.open == nil {
				group.open = row
				group.openMd = md
			}
		case strings.Contains(action, "close"):
			if group.closeRow == nil {
				group.closeRow = row
				group.closeMd = md
			}
		}
	}

	positions := make([]model.LedgerPosition, 0, len(order))
	for _, id := range order {
		group := groups[id]
		if group.open == nil {
			continue
		}
		positions = append(positions, buildPosition(id, group))
	}

	sort.SliceStable(positions, func(i, j int) bool {
		a, b := positions[i].EntryTimestamp, positions[j].EntryTimestamp
		if a.IsZero() {
			return false
		}
		if b.IsZero() {
			return true
		}
		return a.After(b)
	})
	return positions
}

// FilterOpenPositions keeps the still-open positions.
func FilterOpenPositions(positions []model.LedgerPosition) []model.LedgerPosition {
	return filterByStatus(positions, enum.PositionStatusOpen)
}

// FilterClosedPositions keeps the closed positions.
func FilterClosedPositions(positions []model.LedgerPosition) []model.LedgerPosition {
	return filterByStatus(positions, enum.PositionStatusClosed)
}

func filterByStatus(positions []model.LedgerPosition, status enum.PositionStatus) []model.LedgerPosition {
	result := make([]model.LedgerPosition, 0, len(positions))
	for _, position := range positions {
		if position.Status == status {
			result = append(result, position)
		}
	}
	return result
}

func buildPosition(id string, group *rowGroup) model.LedgerPosition {
	open, md := group.open, group.openMd

	leverage, ok := md.float(metaLeverage)
	if !ok || leverage <= 0 {
		leverage = 1
	}

	collateral, _ := md.float(metaCollateral)

	entryPrice, ok := md.float(metaEntryPrice)
	if !ok || entryPrice <= 0 {
		entryPrice, _ = open.Price.Float64()
	}

	size, ok := md.float(metaSize)
	if !ok {
		size = collateral * leverage
	}

	quantity, ok := md.float(metaQuantity)
	if !ok {
		if entryPrice > 0 {
			quantity = collateral * leverage / entryPrice
		} else {
			quantity, _ = open.Quantity.Float64()
		}
	}

	position := model.LedgerPosition{
		ID:             id,
		Asset:          open.Symbol,
		Side:           sideOf(md),
		Status:         enum.PositionStatusOpen,
		Size:           size,
		Collateral:     collateral,
		Quantity:       quantity,
		EntryPrice:     entryPrice,
		EntryTimestamp: timestampOf(md, metaOpenedAt, open.ExecutedAt),
		Leverage:       leverage,
	}

	if group.closeRow == nil {
		return position
	}

	// Exit fields default independently: each falls back to the close
	// row's own scalar when the metadata is silent.
	closeRow, closeMd := group.closeRow, group.closeMd
	position.Status = enum.PositionStatusClosed

	exitPrice, ok := closeMd.float(metaExitPrice)
	if !ok || exitPrice <= 0 {
		exitPrice, _ = closeRow.Price.Float64()
	}
	position.ExitPrice = exitPrice
	position.ExitTimestamp = timestampOf(closeMd, metaClosedAt, closeRow.ExecutedAt)

	if pnl, ok := closeMd.float(metaRealizedPnl); ok {
		position.RealizedPnl = pnl
	} else if closeRow.RealizedPnl.Valid {
		position.RealizedPnl, _ = closeRow.RealizedPnl.Decimal.Float64()
	}

	return position
}

func sideOf(md metadata) enum.Side {
	switch strings.ToLower(md.str(metaSide)) {
	case "long", "buy":
		return enum.SideLong
	case "short", "sell":
		return enum.SideShort
	}

	action := strings.ToLower(md.str(metaAction))
	if strings.Contains(action, "short") {
		return enum.SideShort
	}
	return enum.SideLong
}

func timestampOf(md metadata, key string, fallback time.Time) time.Time {
	raw, ok := md[key]
	if !ok {
		return fallback
	}

	switch v := raw.(type) {
	case string:
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			return ts
		}
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.UnixMilli(ms)
		}
		return fallback
	case float64:
		return time.UnixMilli(int64(v))
	default:
		return fallback
	}
}

// metadata is a parsed ledger row blob. All lookups are safe-parse with
// fallback; nothing here ever raises on malformed input.
type metadata map[string]any

func parseMetadata(blob string) metadata {
	if blob == "" {
		return metadata{}
	}

	var md metadata
	if err := sonic.Unmarshal([]byte(blob), &md); err != nil {
		// some writers double-encode the blob
		var nested string
		if err := sonic.Unmarshal([]byte(blob), &nested); err != nil {
			return metadata{}
		}
		if err := sonic.Unmarshal([]byte(nested), &md); err != nil {
			return metadata{}
		}
	}
	if md == nil {
		return metadata{}
	}
	return md
}

func (md metadata) str(key string) string {
	switch v := md[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func (md metadata) float(key string) (float64, bool) {
	switch v := md[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
