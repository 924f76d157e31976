package dto

// CreateAgentRequest is the payload for adding a roster entry
type CreateAgentRequest struct {
	Name   string `json:"name" binding:"required"`
	Email  string `json:"email" binding:"required,email"`
	Mobile string `json:"mobile" binding:"required,inmobile"`
}

// AgentDTO is an agent as returned to clients
type AgentDTO struct {
	AgentID string `json:"agent_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Mobile  string `json:"mobile"`
}

// UploadResponse reports the outcome of an upload-and-distribute run
type UploadResponse struct {
	Message     string `json:"message"`
	TotalRows   int    `json:"total_rows"`
	TotalAgents int    `json:"total_agents"`
	DroppedRows int    `json:"dropped_rows"`
}

// DistributeResponse reports the outcome of a redistribute run
type DistributeResponse struct {
	Message     string `json:"message"`
	TotalRows   int    `json:"total_rows"`
	TotalAgents int    `json:"total_agents"`
}

// AssignmentDTO is a single assignment as returned to clients
type AssignmentDTO struct {
	AssignmentID string    `json:"assignment_id"`
	RecordNo     *float64  `json:"record_no,omitempty"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	Status       string    `json:"status"`
	Agent        *AgentDTO `json:"agent"`
}

// CallListResponse lists the call queue in record-number order
type CallListResponse struct {
	CallList []AssignmentDTO `json:"call_list"`
}

// AgentItems groups one agent's assignments
type AgentItems struct {
	Agent AgentDTO        `json:"agent"`
	Items []AssignmentDTO `json:"items"`
}

// DistributedListsResponse groups generic-list assignments by agent
type DistributedListsResponse struct {
	DistributedLists []AgentItems `json:"distributed_lists"`
}

// CompleteResponse reports an idempotent status transition
type CompleteResponse struct {
	Message    string        `json:"message"`
	Assignment StatusSummary `json:"assignment"`
}

// StatusSummary is the minimal view of an assignment after a transition
type StatusSummary struct {
	AssignmentID string `json:"assignment_id"`
	Status       string `json:"status"`
}
