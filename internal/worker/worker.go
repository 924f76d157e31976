package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dialdesk/dialdesk-be/internal/worker/domain"
	"github.com/dialdesk/dialdesk-be/internal/worker/storage"
	"github.com/dialdesk/dialdesk-be/shared/postgresql"
	"github.com/dialdesk/dialdesk-be/shared/rabbitmq"
	"github.com/google/uuid"
)

// Config holds worker configuration
type Config struct {
	Logger         *slog.Logger
	DBClient       *postgresql.Client
	RabbitClient   *rabbitmq.Client
	Concurrency    int
	MessageTimeout time.Duration
	PrefetchCount  int
	QueueName      string
}

// Worker consumes distribution events and fans out per-agent workload
// notifications.
type Worker struct {
	logger         *slog.Logger
	rabbitClient   *rabbitmq.Client
	storage        *storage.Storage
	concurrency    int
	messageTimeout time.Duration
	prefetchCount  int
	queueName      string
	workerID       string
	eventsChan     chan *domain.EventMessage
	wg             sync.WaitGroup
	stopChan       chan struct{}
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	return &Worker{
		logger:         cfg.Logger,
		rabbitClient:   cfg.RabbitClient,
		storage:        storage.NewStorage(cfg.DBClient.GetDB(), cfg.Logger),
		concurrency:    cfg.Concurrency,
		messageTimeout: cfg.MessageTimeout,
		prefetchCount:  cfg.PrefetchCount,
		queueName:      cfg.QueueName,
		workerID:       fmt.Sprintf("notifier-%s", uuid.New().String()[:8]),
		eventsChan:     make(chan *domain.EventMessage),
		stopChan:       make(chan struct{}),
	}
}

// Start begins consuming distribution events until the context is canceled
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting notifier worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("message_timeout", w.messageTimeout),
	)

	deliveries, err := w.setupConsumer(ctx)
	if err != nil {
		return fmt.Errorf("failed to set up consumer: %w", err)
	}

	w.spawnWorkerPool(ctx)

	go w.startMessageDispatcher(ctx, deliveries)

	<-ctx.Done()
	w.logger.Info("Worker context canceled, stopping...")

	return nil
}

// Stop gracefully stops the worker
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("Worker stopped")
}
