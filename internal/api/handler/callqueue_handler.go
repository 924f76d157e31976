package handler

import (
	"log/slog"
	"net/http"

	"github.com/dialdesk/dialdesk-be/internal/api/dto"
	"github.com/dialdesk/dialdesk-be/internal/ingest"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UploadCallList handles POST /api/v1/call-list/upload
// Ingests a CSV call list, replacing the entire stored queue, and assigns
// records round-robin across agents in record-number order.
func (h *CallQueueHandler) UploadCallList(c *gin.Context) {
	h.logger.Info("UploadCallList called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	)

	file, format, err := openUpload(c, h.maxBytes, ingest.FormatCSV)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	result, err := h.dispatch.IngestAndDistribute(c.Request.Context(), file, format, ingest.SchemaCallQueue)
	if err != nil {
		h.logger.Error("Call list upload failed", slog.String("error", err.Error()))
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, dto.UploadResponse{
		Message:     "Call list uploaded and distributed successfully",
		TotalRows:   result.TotalRows,
		TotalAgents: result.TotalAgents,
		DroppedRows: result.DroppedRows,
	})
}

// GetCallList handles GET /api/v1/call-list
// Returns all call records in record-number order with their linked agent
func (h *CallQueueHandler) GetCallList(c *gin.Context) {
	records, err := h.storage.ListCallQueue(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list call queue", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	callList := make([]dto.AssignmentDTO, len(records))
	for i, record := range records {
		callList[i] = assignmentDTO(record)
	}

	c.JSON(http.StatusOK, dto.CallListResponse{CallList: callList})
}

// Distribute handles POST /api/v1/call-list/distribute
// Re-links the stored call queue across the current roster
func (h *CallQueueHandler) Distribute(c *gin.Context) {
	result, err := h.dispatch.RedistributeCallQueue(c.Request.Context())
	if err != nil {
		h.logger.Error("Call queue redistribution failed", slog.String("error", err.Error()))
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, dto.DistributeResponse{
		Message:     "Call records distributed among agents successfully",
		TotalRows:   result.TotalRows,
		TotalAgents: result.TotalAgents,
	})
}

// CompleteCall handles PATCH /api/v1/call-list/:id/complete
// Marks a call record as completed; repeat calls are a no-op
func (h *CallQueueHandler) CompleteCall(c *gin.Context) {
	assignmentID := c.Param("id")

	if _, err := uuid.Parse(assignmentID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid call record ID"})
		return
	}

	result, err := h.dispatch.MarkCompleted(c.Request.Context(), assignmentID)
	if err != nil {
		h.logger.Error("Failed to complete call record",
			slog.String("assignment_id", assignmentID),
			slog.String("error", err.Error()),
		)
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	message := "Call marked as completed"
	if result.AlreadyCompleted {
		message = "Call already marked as completed"
	}

	c.JSON(http.StatusOK, dto.CompleteResponse{
		Message: message,
		Assignment: dto.StatusSummary{
			AssignmentID: result.AssignmentID,
			Status:       result.Status,
		},
	})
}

// ClearCallList handles DELETE /api/v1/call-list
// Removes every stored call record
func (h *CallQueueHandler) ClearCallList(c *gin.Context) {
	if err := h.dispatch.ClearCallQueue(c.Request.Context()); err != nil {
		h.logger.Error("Failed to clear call queue", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All call records have been removed"})
}
