package dispatch

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/dialdesk/dialdesk-be/internal/ingest"
	"github.com/google/uuid"
)

// EventPublisher publishes run events to the message broker
type EventPublisher interface {
	Publish(ctx context.Context, body []byte, contentType string) error
}

// DistributionEvent is emitted after every successful distribution run. The
// worker service consumes it to fan out per-agent workload notifications.
type DistributionEvent struct {
	RunID       string    `json:"run_id"`
	Kind        string    `json:"kind"`
	TotalRows   int       `json:"total_rows"`
	TotalAgents int       `json:"total_agents"`
	DroppedRows int       `json:"dropped_rows"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// publishCompleted emits a DistributionEvent. Publishing is best effort: a
// broker failure is logged and never fails the run.
func (s *Service) publishCompleted(ctx context.Context, kind ingest.SchemaKind, result *Result) {
	if s.publisher == nil {
		return
	}

	event := DistributionEvent{
		RunID:       uuid.New().String(),
		Kind:        string(kind),
		TotalRows:   result.TotalRows,
		TotalAgents: result.TotalAgents,
		DroppedRows: result.DroppedRows,
		OccurredAt:  time.Now().UTC(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Failed to marshal distribution event",
			slog.String("error", err.Error()),
		)
		return
	}

	if err := s.publisher.Publish(ctx, body, "application/json"); err != nil {
		s.logger.Error("Failed to publish distribution event",
			slog.String("run_id", event.RunID),
			slog.String("error", err.Error()),
		)
		return
	}

	s.logger.Debug("Distribution event published",
		slog.String("run_id", event.RunID),
		slog.String("kind", event.Kind),
	)
}
