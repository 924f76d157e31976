package storage

import (
	"context"
	"fmt"

	"github.com/dialdesk/dialdesk-be/internal/api/model"
)

// ListAgents returns the agent roster in creation order. Distribution runs
// treat this ordering as the roster order.
func (s *Storage) ListAgents(ctx context.Context) ([]model.Agent, error) {
	query := `
		SELECT agent_id, name, email, mobile, created_at, updated_at
		FROM agents
		ORDER BY created_at ASC, agent_id ASC
	`

	var agents []model.Agent
	if err := s.db.SelectContext(ctx, &agents, query); err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}

	return agents, nil
}

// CreateAgent inserts a new roster entry. Email and mobile are unique; a
// conflict surfaces as a DuplicateKeyError naming the field.
func (s *Storage) CreateAgent(ctx context.Context, agent *model.Agent) error {
	query := `
		INSERT INTO agents (agent_id, name, email, mobile, created_at, updated_at)
		VALUES (:agent_id, :name, :email, :mobile, :created_at, :updated_at)
	`

	if _, err := s.db.NamedExecContext(ctx, query, agent); err != nil {
		if dup := mapDuplicateKey(err); dup != nil {
			return dup
		}
		return fmt.Errorf("failed to create agent: %w", err)
	}

	return nil
}
