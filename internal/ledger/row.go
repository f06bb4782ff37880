package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Row is one immutable trade event of the append-only ledger table. Rows
// are written elsewhere; this engine only reads them.
type Row struct {
	ID          uint64              `gorm:"column:id;primaryKey;autoIncrement"`
	AgentID     string              `gorm:"column:agent_id;index"`
	Symbol      string              `gorm:"column:symbol"`
	Price       decimal.Decimal     `gorm:"column:price;type:numeric"`
	Quantity    decimal.Decimal     `gorm:"column:quantity;type:numeric"`
	ExecutedAt  time.Time           `gorm:"column:executed_at"`
	RealizedPnl decimal.NullDecimal `gorm:"column:realized_pnl;type:numeric"`
	Metadata    string              `gorm:"column:metadata;type:jsonb"`
}

// TableName maps the model onto the persisted ledger table.
func (Row) TableName() string {
	return "trade_ledger"
}
