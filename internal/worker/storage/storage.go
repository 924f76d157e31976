package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dialdesk/dialdesk-be/internal/worker/domain"
	"github.com/jmoiron/sqlx"
)

// Storage handles all database operations for the notifier worker
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// AgentWorkloads returns per-agent pending/completed counts for one
// assignment kind, in roster order.
func (s *Storage) AgentWorkloads(ctx context.Context, kind string) ([]domain.AgentWorkload, error) {
	query := `
		SELECT
			ag.agent_id,
			ag.name,
			ag.email,
			COUNT(*) FILTER (WHERE a.status = 'pending')   AS pending,
			COUNT(*) FILTER (WHERE a.status = 'completed') AS completed
		FROM assignments a
		JOIN agents ag ON ag.agent_id = a.agent_id
		WHERE a.kind = $1
		GROUP BY ag.agent_id, ag.name, ag.email, ag.created_at
		ORDER BY ag.created_at ASC, ag.agent_id ASC
	`

	var workloads []domain.AgentWorkload
	if err := s.db.SelectContext(ctx, &workloads, query, kind); err != nil {
		return nil, fmt.Errorf("failed to load agent workloads: %w", err)
	}

	return workloads, nil
}
