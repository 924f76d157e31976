package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dialdesk/dialdesk-be/internal/api/domain"
	"github.com/dialdesk/dialdesk-be/internal/api/model"
	"github.com/dialdesk/dialdesk-be/internal/ingest"
	"github.com/dialdesk/dialdesk-be/shared/postgresql"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Storage handles all database operations for agents and assignments
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(pg *postgresql.Client, logger *slog.Logger) *Storage {
	return &Storage{
		db:     pg.GetDB(),
		logger: logger,
	}
}

const insertAssignmentQuery = `
	INSERT INTO assignments (
		assignment_id, kind, record_no, name, phone,
		email, notes, agent_id, status, created_at, updated_at
	) VALUES (
		:assignment_id, :kind, :record_no, :name, :phone,
		:email, :notes, :agent_id, :status, :created_at, :updated_at
	)
`

// AgentLink binds an assignment to the agent it should be linked to
type AgentLink struct {
	AssignmentID string
	AgentID      string
}

// ReplaceCallQueue atomically discards every call-queue assignment and inserts
// the new batch. A reader never observes a partially replaced queue.
func (s *Storage) ReplaceCallQueue(ctx context.Context, assignments []model.Assignment) error {
	err := postgresql.WithinTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM assignments WHERE kind = $1`, string(ingest.SchemaCallQueue)); err != nil {
			return fmt.Errorf("failed to clear call queue: %w", err)
		}

		if _, err := tx.NamedExecContext(ctx, insertAssignmentQuery, assignments); err != nil {
			return fmt.Errorf("failed to insert call queue batch: %w", err)
		}

		return nil
	})

	if err != nil {
		if dup := mapDuplicateKey(err); dup != nil {
			return dup
		}
		return err
	}

	s.logger.Info("Call queue replaced",
		slog.Int("assignments", len(assignments)),
	)

	return nil
}

// AppendGeneric inserts new generic-list assignments without touching
// existing ones.
func (s *Storage) AppendGeneric(ctx context.Context, assignments []model.Assignment) error {
	err := postgresql.WithinTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, insertAssignmentQuery, assignments); err != nil {
			return fmt.Errorf("failed to insert generic list batch: %w", err)
		}
		return nil
	})

	if err != nil {
		if dup := mapDuplicateKey(err); dup != nil {
			return dup
		}
		return err
	}

	s.logger.Info("Generic list appended",
		slog.Int("assignments", len(assignments)),
	)

	return nil
}

// BulkLinkAgents updates the agent reference of many assignments in one
// transaction.
func (s *Storage) BulkLinkAgents(ctx context.Context, links []AgentLink) error {
	return postgresql.WithinTx(ctx, s.db, func(tx *sqlx.Tx) error {
		stmt, err := tx.PreparexContext(ctx, `
			UPDATE assignments
			SET agent_id = $1, updated_at = NOW()
			WHERE assignment_id = $2
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare link statement: %w", err)
		}
		defer stmt.Close()

		for _, link := range links {
			if _, err := stmt.ExecContext(ctx, link.AgentID, link.AssignmentID); err != nil {
				return fmt.Errorf("failed to link assignment %s: %w", link.AssignmentID, err)
			}
		}

		return nil
	})
}

// ListCallQueue returns every call-queue assignment ordered by record number,
// joined with the linked agent when present.
func (s *Storage) ListCallQueue(ctx context.Context) ([]model.AssignmentWithAgent, error) {
	return s.listAssignments(ctx, ingest.SchemaCallQueue, "a.record_no ASC")
}

// ListGeneric returns every generic-list assignment in creation order, joined
// with the linked agent when present.
func (s *Storage) ListGeneric(ctx context.Context) ([]model.AssignmentWithAgent, error) {
	return s.listAssignments(ctx, ingest.SchemaGenericList, "a.created_at ASC, a.assignment_id ASC")
}

func (s *Storage) listAssignments(ctx context.Context, kind ingest.SchemaKind, orderBy string) ([]model.AssignmentWithAgent, error) {
	query := fmt.Sprintf(`
		SELECT
			a.assignment_id, a.kind, a.record_no, a.name, a.phone,
			a.email, a.notes, a.agent_id, a.status, a.created_at, a.updated_at,
			ag.name AS agent_name, ag.email AS agent_email, ag.mobile AS agent_mobile
		FROM assignments a
		LEFT JOIN agents ag ON ag.agent_id = a.agent_id
		WHERE a.kind = $1
		ORDER BY %s
	`, orderBy)

	var assignments []model.AssignmentWithAgent
	if err := s.db.SelectContext(ctx, &assignments, query, string(kind)); err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	return assignments, nil
}

// GetAssignmentByID fetches a single assignment
func (s *Storage) GetAssignmentByID(ctx context.Context, assignmentID string) (*model.Assignment, error) {
	query := `
		SELECT assignment_id, kind, record_no, name, phone,
		       email, notes, agent_id, status, created_at, updated_at
		FROM assignments
		WHERE assignment_id = $1
	`

	var assignment model.Assignment
	if err := s.db.GetContext(ctx, &assignment, query, assignmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	return &assignment, nil
}

// MarkCompleted transitions an assignment from pending to completed. The
// status predicate makes concurrent completions of the same assignment safe:
// whichever call wins, the row ends up completed. Returns true when the
// assignment was already completed (no-op).
func (s *Storage) MarkCompleted(ctx context.Context, assignmentID string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE assignments
		SET status = $1, updated_at = NOW()
		WHERE assignment_id = $2 AND status <> $1
	`, domain.StatusCompleted, assignmentID)
	if err != nil {
		return false, fmt.Errorf("failed to mark assignment completed: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if affected > 0 {
		return false, nil
	}

	// Nothing updated: either the id is unknown or the row is already done
	var status string
	err = s.db.GetContext(ctx, &status, `SELECT status FROM assignments WHERE assignment_id = $1`, assignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, domain.ErrAssignmentNotFound
		}
		return false, fmt.Errorf("failed to check assignment status: %w", err)
	}

	return status == domain.StatusCompleted, nil
}

// DeleteCallQueue removes every call-queue assignment
func (s *Storage) DeleteCallQueue(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM assignments WHERE kind = $1`, string(ingest.SchemaCallQueue)); err != nil {
		return fmt.Errorf("failed to delete call queue: %w", err)
	}

	s.logger.Info("Call queue cleared")
	return nil
}

// mapDuplicateKey converts a pq unique violation into a DuplicateKeyError
// naming the conflicting field, or returns nil for unrelated errors.
func mapDuplicateKey(err error) *domain.DuplicateKeyError {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return nil
	}

	switch {
	case strings.Contains(pqErr.Constraint, "record_no"):
		return &domain.DuplicateKeyError{Field: "record_no"}
	case strings.Contains(pqErr.Constraint, "email"):
		return &domain.DuplicateKeyError{Field: "email"}
	case strings.Contains(pqErr.Constraint, "mobile"):
		return &domain.DuplicateKeyError{Field: "mobile"}
	default:
		return &domain.DuplicateKeyError{Field: pqErr.Constraint}
	}
}
