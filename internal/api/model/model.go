package model

import "time"

// Agent is one roster entry rows are assigned to
type Agent struct {
	AgentID   string    `db:"agent_id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Mobile    string    `db:"mobile"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Assignment is one persisted row bound to at most one agent. RecordNo is set
// only for call-queue rows; AgentID is nil until a distribution run links it.
type Assignment struct {
	AssignmentID string    `db:"assignment_id"`
	Kind         string    `db:"kind"`
	RecordNo     *float64  `db:"record_no"`
	Name         string    `db:"name"`
	Phone        string    `db:"phone"`
	Email        string    `db:"email"`
	Notes        string    `db:"notes"`
	AgentID      *string   `db:"agent_id"`
	Status       string    `db:"status"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// AssignmentWithAgent is an assignment joined with its linked agent, when any
type AssignmentWithAgent struct {
	Assignment
	AgentName   *string `db:"agent_name"`
	AgentEmail  *string `db:"agent_email"`
	AgentMobile *string `db:"agent_mobile"`
}
