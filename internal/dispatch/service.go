// Package dispatch orchestrates one distribution run end to end: parse the
// upload, normalize and validate rows, plan the row-to-agent assignment, and
// realize the plan atomically in storage.
package dispatch

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/dialdesk/dialdesk-be/internal/api/domain"
	"github.com/dialdesk/dialdesk-be/internal/api/model"
	"github.com/dialdesk/dialdesk-be/internal/api/storage"
	"github.com/dialdesk/dialdesk-be/internal/distribute"
	"github.com/dialdesk/dialdesk-be/internal/ingest"
	"github.com/google/uuid"
)

// Store is the persistence collaborator of a distribution run
type Store interface {
	ListAgents(ctx context.Context) ([]model.Agent, error)
	ReplaceCallQueue(ctx context.Context, assignments []model.Assignment) error
	AppendGeneric(ctx context.Context, assignments []model.Assignment) error
	BulkLinkAgents(ctx context.Context, links []storage.AgentLink) error
	ListCallQueue(ctx context.Context) ([]model.AssignmentWithAgent, error)
	GetAssignmentByID(ctx context.Context, assignmentID string) (*model.Assignment, error)
	MarkCompleted(ctx context.Context, assignmentID string) (bool, error)
	DeleteCallQueue(ctx context.Context) error
}

// Config holds the service dependencies
type Config struct {
	Logger          *slog.Logger
	Store           Store
	Publisher       EventPublisher // optional
	MaxActiveAgents int
}

// Service runs ingestion and distribution. A service-level mutex serializes
// distribution runs so that concurrent uploads cannot interleave their
// replace/insert sequences.
type Service struct {
	logger    *slog.Logger
	store     Store
	publisher EventPublisher
	maxActive int

	runMu sync.Mutex
}

// NewService creates a dispatch service
func NewService(cfg *Config) *Service {
	return &Service{
		logger:    cfg.Logger,
		store:     cfg.Store,
		publisher: cfg.Publisher,
		maxActive: cfg.MaxActiveAgents,
	}
}

// Result summarizes a distribution run
type Result struct {
	TotalRows   int
	TotalAgents int
	DroppedRows int
}

// CompletionResult is the outcome of a status transition
type CompletionResult struct {
	AssignmentID     string
	Status           string
	AlreadyCompleted bool
}

// IngestAndDistribute parses the stream, validates its rows against the
// schema kind, assigns every valid row to an agent and persists the batch.
// Call-queue uploads replace the existing queue and use round-robin; generic
// list uploads append and use balanced partitioning. Either every assignment
// of the run is created or none.
func (s *Service) IngestAndDistribute(ctx context.Context, r io.Reader, format ingest.Format, kind ingest.SchemaKind) (*Result, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	rawRows, err := ingest.ParseRows(r, format)
	if err != nil {
		return nil, err
	}

	canonical := make([]ingest.CanonicalRow, len(rawRows))
	for i, raw := range rawRows {
		canonical[i] = ingest.Normalize(raw, kind)
	}

	valid, dropped, err := ingest.ValidateAll(canonical, kind)
	if err != nil {
		return nil, err
	}

	if dropped > 0 {
		s.logger.Debug("Dropped invalid rows during validation",
			slog.Int("dropped", dropped),
			slog.String("kind", string(kind)),
		)
	}

	agents, err := s.store.ListAgents(ctx)
	if err != nil {
		return nil, err
	}

	agentIDs := make([]string, len(agents))
	for i, agent := range agents {
		agentIDs[i] = agent.AgentID
	}

	policy := distribute.PolicyBalanced
	if kind == ingest.SchemaCallQueue {
		policy = distribute.PolicyRoundRobin
	}

	plan, err := distribute.BuildPlan(valid, agentIDs, policy, s.maxActive)
	if err != nil {
		return nil, err
	}

	assignments := buildAssignments(plan, kind)

	if kind == ingest.SchemaCallQueue {
		err = s.store.ReplaceCallQueue(ctx, assignments)
	} else {
		err = s.store.AppendGeneric(ctx, assignments)
	}
	if err != nil {
		return nil, err
	}

	result := &Result{
		TotalRows:   plan.TotalRows,
		TotalAgents: plan.TotalAgents,
		DroppedRows: dropped,
	}

	s.logger.Info("Distribution run completed",
		slog.String("kind", string(kind)),
		slog.String("policy", string(policy)),
		slog.Int("total_rows", result.TotalRows),
		slog.Int("total_agents", result.TotalAgents),
		slog.Int("dropped_rows", result.DroppedRows),
	)

	s.publishCompleted(ctx, kind, result)

	return result, nil
}

// RedistributeCallQueue re-links the stored call queue across the current
// roster, round-robin by record number order, without re-ingesting anything.
func (s *Service) RedistributeCallQueue(ctx context.Context) (*Result, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	agents, err := s.store.ListAgents(ctx)
	if err != nil {
		return nil, err
	}

	agentIDs := make([]string, len(agents))
	for i, agent := range agents {
		agentIDs[i] = agent.AgentID
	}

	active := distribute.CapRoster(agentIDs, s.maxActive)
	if len(active) == 0 {
		return nil, distribute.ErrNoAgents
	}

	// Already ordered by record number
	records, err := s.store.ListCallQueue(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, distribute.ErrNoRecords
	}

	idx := distribute.Spread(len(records), len(active), distribute.PolicyRoundRobin)

	links := make([]storage.AgentLink, len(records))
	for i, record := range records {
		links[i] = storage.AgentLink{
			AssignmentID: record.AssignmentID,
			AgentID:      active[idx[i]],
		}
	}

	if err := s.store.BulkLinkAgents(ctx, links); err != nil {
		return nil, err
	}

	result := &Result{
		TotalRows:   len(records),
		TotalAgents: len(active),
	}

	s.logger.Info("Call queue redistributed",
		slog.Int("total_rows", result.TotalRows),
		slog.Int("total_agents", result.TotalAgents),
	)

	s.publishCompleted(ctx, ingest.SchemaCallQueue, result)

	return result, nil
}

// MarkCompleted transitions an assignment to completed. Repeating the call on
// an already-completed assignment succeeds and reports the no-op. The status
// in the result is read back from storage after the transition.
func (s *Service) MarkCompleted(ctx context.Context, assignmentID string) (*CompletionResult, error) {
	already, err := s.store.MarkCompleted(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	assignment, err := s.store.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	return &CompletionResult{
		AssignmentID:     assignment.AssignmentID,
		Status:           assignment.Status,
		AlreadyCompleted: already,
	}, nil
}

// ClearCallQueue removes every stored call-queue assignment
func (s *Service) ClearCallQueue(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	return s.store.DeleteCallQueue(ctx)
}

// buildAssignments realizes a plan as persistable assignment records
func buildAssignments(plan *distribute.Plan, kind ingest.SchemaKind) []model.Assignment {
	now := time.Now().UTC()

	assignments := make([]model.Assignment, len(plan.Pairs))
	for i, pair := range plan.Pairs {
		agentID := pair.AgentID
		assignments[i] = model.Assignment{
			AssignmentID: uuid.New().String(),
			Kind:         string(kind),
			RecordNo:     pair.Row.RecordNo,
			Name:         pair.Row.Name,
			Phone:        pair.Row.Phone,
			Email:        pair.Row.Email,
			Notes:        pair.Row.Notes,
			AgentID:      &agentID,
			Status:       domain.StatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	}

	return assignments
}
