package ledger

import (
	"context"

	"github.com/yanun0323/errors"
	"gorm.io/gorm"

	"main/internal/model"
)

// Repository reads the append-only ledger table.
type Repository struct {
	db *gorm.DB
}

// NewRepository wraps a gorm connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates the ledger table when absent.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&Row{})
}

// RowsByAgent returns every ledger row of an agent in execution order.
func (r *Repository) RowsByAgent(ctx context.Context, agentID string) ([]Row, error) {
	var rows []Row
	err := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Order("executed_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "query ledger rows").With("agent", agentID)
	}
	return rows, nil
}

// PositionsByAgent reconstructs the agent's discrete positions from the
// ledger. The result is computed fresh on every call, never cached.
func (r *Repository) PositionsByAgent(ctx context.Context, agentID string) ([]model.LedgerPosition, error) {
	rows, err := r.RowsByAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	return BuildPositionsFromLedger(rows), nil
}
