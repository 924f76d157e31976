package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dialdesk/dialdesk-be/internal/api/domain"
	"github.com/dialdesk/dialdesk-be/internal/api/storage"
	"github.com/dialdesk/dialdesk-be/internal/config"
	"github.com/dialdesk/dialdesk-be/internal/dispatch"
	"github.com/dialdesk/dialdesk-be/internal/distribute"
	"github.com/dialdesk/dialdesk-be/internal/ingest"
	"github.com/dialdesk/dialdesk-be/shared/postgresql"
	"github.com/dialdesk/dialdesk-be/shared/rabbitmq"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger   *slog.Logger
	Dispatch *dispatch.Service
	Storage  *storage.Storage
	DB       *postgresql.Client
	Rabbit   *rabbitmq.Client
	Upload   config.UploadConfig
}

// ListHandler handles generic contact list endpoints
type ListHandler struct {
	logger   *slog.Logger
	dispatch *dispatch.Service
	storage  *storage.Storage
	maxBytes int64
}

// NewListHandler creates a new ListHandler instance
func NewListHandler(deps *Dependencies) *ListHandler {
	return &ListHandler{
		logger:   deps.Logger,
		dispatch: deps.Dispatch,
		storage:  deps.Storage,
		maxBytes: deps.Upload.ListMaxBytes,
	}
}

// CallQueueHandler handles call queue endpoints
type CallQueueHandler struct {
	logger   *slog.Logger
	dispatch *dispatch.Service
	storage  *storage.Storage
	maxBytes int64
}

// NewCallQueueHandler creates a new CallQueueHandler instance
func NewCallQueueHandler(deps *Dependencies) *CallQueueHandler {
	return &CallQueueHandler{
		logger:   deps.Logger,
		dispatch: deps.Dispatch,
		storage:  deps.Storage,
		maxBytes: deps.Upload.CallQueueMaxBytes,
	}
}

// AgentHandler handles agent roster endpoints
type AgentHandler struct {
	logger  *slog.Logger
	storage *storage.Storage
}

// NewAgentHandler creates a new AgentHandler instance
func NewAgentHandler(deps *Dependencies) *AgentHandler {
	return &AgentHandler{
		logger:  deps.Logger,
		storage: deps.Storage,
	}
}

// statusForError maps engine errors onto HTTP status codes. Engine errors
// carry user-facing messages and are surfaced verbatim; anything else is a
// server error.
func statusForError(err error) (int, string) {
	var parseErr *ingest.ParseError
	var dupErr *domain.DuplicateKeyError

	switch {
	case errors.Is(err, domain.ErrAssignmentNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, ingest.ErrNoValidRows),
		errors.Is(err, distribute.ErrNoAgents),
		errors.Is(err, distribute.ErrNoRecords):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &parseErr):
		return http.StatusBadRequest, parseErr.Error()
	case errors.As(err, &dupErr):
		return http.StatusConflict, dupErr.Error()
	default:
		return http.StatusInternalServerError, "Server error"
	}
}
