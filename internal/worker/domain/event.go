package domain

import "time"

// DistributionEvent is the message published by the API service after every
// successful distribution run.
type DistributionEvent struct {
	RunID       string    `json:"run_id"`
	Kind        string    `json:"kind"`
	TotalRows   int       `json:"total_rows"`
	TotalAgents int       `json:"total_agents"`
	DroppedRows int       `json:"dropped_rows"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// EventMessage pairs a decoded event with its broker delivery tag
type EventMessage struct {
	Event       DistributionEvent
	DeliveryTag uint64
}

// AgentWorkload is one agent's share of a distributed list
type AgentWorkload struct {
	AgentID   string `db:"agent_id"`
	Name      string `db:"name"`
	Email     string `db:"email"`
	Pending   int    `db:"pending"`
	Completed int    `db:"completed"`
}
