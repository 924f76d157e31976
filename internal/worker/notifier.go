package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dialdesk/dialdesk-be/internal/worker/domain"
)

// processEvent handles one distribution event: it loads the per-agent
// workload for the distributed kind and emits a notification per agent.
func (w *Worker) processEvent(ctx context.Context, msg *domain.EventMessage) error {
	event := msg.Event

	w.logger.Info("Processing distribution event",
		slog.String("run_id", event.RunID),
		slog.String("kind", event.Kind),
		slog.Int("total_rows", event.TotalRows),
		slog.Int("total_agents", event.TotalAgents),
	)

	if event.Kind == "" {
		return fmt.Errorf("%w: missing kind", domain.ErrInvalidEvent)
	}

	eventCtx, cancel := context.WithTimeout(ctx, w.messageTimeout)
	defer cancel()

	workloads, err := w.storage.AgentWorkloads(eventCtx, event.Kind)
	if err != nil {
		// Database failures are transient from the consumer's point of view
		return domain.NewRetryableError(fmt.Errorf("failed to load workloads: %w", err))
	}

	for _, workload := range workloads {
		w.notifyAgent(event, workload)
	}

	w.logger.Info("Distribution event processed",
		slog.String("run_id", event.RunID),
		slog.Int("agents_notified", len(workloads)),
	)

	return nil
}

// notifyAgent emits the workload summary for one agent. The notification
// channel is the structured log for now; an email or webhook sender can hook
// in here without touching the consumer.
func (w *Worker) notifyAgent(event domain.DistributionEvent, workload domain.AgentWorkload) {
	w.logger.Info("Agent workload updated",
		slog.String("run_id", event.RunID),
		slog.String("kind", event.Kind),
		slog.String("agent_id", workload.AgentID),
		slog.String("agent_name", workload.Name),
		slog.String("agent_email", workload.Email),
		slog.Int("pending", workload.Pending),
		slog.Int("completed", workload.Completed),
	)
}
