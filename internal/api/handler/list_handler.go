package handler

import (
	"log/slog"
	"net/http"

	"github.com/dialdesk/dialdesk-be/internal/api/dto"
	"github.com/dialdesk/dialdesk-be/internal/api/model"
	"github.com/dialdesk/dialdesk-be/internal/ingest"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UploadList handles POST /api/v1/lists/upload
// Ingests a CSV/XLSX contact list and distributes its rows across agents
// using balanced partitioning; rows accumulate on top of earlier uploads.
func (h *ListHandler) UploadList(c *gin.Context) {
	h.logger.Info("UploadList called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	)

	file, format, err := openUpload(c, h.maxBytes, ingest.FormatCSV, ingest.FormatXLSX)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	result, err := h.dispatch.IngestAndDistribute(c.Request.Context(), file, format, ingest.SchemaGenericList)
	if err != nil {
		h.logger.Error("List upload failed", slog.String("error", err.Error()))
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, dto.UploadResponse{
		Message:     "File uploaded and distributed successfully",
		TotalRows:   result.TotalRows,
		TotalAgents: result.TotalAgents,
		DroppedRows: result.DroppedRows,
	})
}

// GetDistributed handles GET /api/v1/lists/distributed
// Returns generic-list assignments grouped by their linked agent
func (h *ListHandler) GetDistributed(c *gin.Context) {
	items, err := h.storage.ListGeneric(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list distributed items", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	grouped := make(map[string]*dto.AgentItems)
	var order []string

	for _, item := range items {
		if item.AgentID == nil {
			continue
		}

		agentID := *item.AgentID
		group, ok := grouped[agentID]
		if !ok {
			group = &dto.AgentItems{Agent: agentDTO(agentID, item)}
			grouped[agentID] = group
			order = append(order, agentID)
		}

		group.Items = append(group.Items, assignmentDTO(item))
	}

	lists := make([]dto.AgentItems, 0, len(order))
	for _, agentID := range order {
		lists = append(lists, *grouped[agentID])
	}

	c.JSON(http.StatusOK, dto.DistributedListsResponse{DistributedLists: lists})
}

// CompleteListItem handles PATCH /api/v1/lists/:id/complete
// Marks a generic-list assignment as completed; repeat calls are a no-op
func (h *ListHandler) CompleteListItem(c *gin.Context) {
	assignmentID := c.Param("id")

	if _, err := uuid.Parse(assignmentID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid list item ID"})
		return
	}

	result, err := h.dispatch.MarkCompleted(c.Request.Context(), assignmentID)
	if err != nil {
		h.logger.Error("Failed to complete list item",
			slog.String("assignment_id", assignmentID),
			slog.String("error", err.Error()),
		)
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	message := "Task marked as completed"
	if result.AlreadyCompleted {
		message = "Task already marked as completed"
	}

	c.JSON(http.StatusOK, dto.CompleteResponse{
		Message: message,
		Assignment: dto.StatusSummary{
			AssignmentID: result.AssignmentID,
			Status:       result.Status,
		},
	})
}

// agentDTO builds the agent view from a joined assignment row
func agentDTO(agentID string, item model.AssignmentWithAgent) dto.AgentDTO {
	agent := dto.AgentDTO{AgentID: agentID}
	if item.AgentName != nil {
		agent.Name = *item.AgentName
	}
	if item.AgentEmail != nil {
		agent.Email = *item.AgentEmail
	}
	if item.AgentMobile != nil {
		agent.Mobile = *item.AgentMobile
	}
	return agent
}

// assignmentDTO builds the client view of one assignment
func assignmentDTO(item model.AssignmentWithAgent) dto.AssignmentDTO {
	out := dto.AssignmentDTO{
		AssignmentID: item.AssignmentID,
		RecordNo:     item.RecordNo,
		Name:         item.Name,
		Phone:        item.Phone,
		Email:        item.Email,
		Notes:        item.Notes,
		Status:       item.Status,
	}

	if item.AgentID != nil {
		agent := agentDTO(*item.AgentID, item)
		out.Agent = &agent
	}

	return out
}
