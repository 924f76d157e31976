package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dialdesk/dialdesk-be/internal/api/dto"
	"github.com/dialdesk/dialdesk-be/internal/api/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ListAgents handles GET /api/v1/agents
// Returns the roster in the order distribution runs consume it
func (h *AgentHandler) ListAgents(c *gin.Context) {
	agents, err := h.storage.ListAgents(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list agents", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	response := make([]dto.AgentDTO, len(agents))
	for i, agent := range agents {
		response[i] = dto.AgentDTO{
			AgentID: agent.AgentID,
			Name:    agent.Name,
			Email:   agent.Email,
			Mobile:  agent.Mobile,
		}
	}

	c.JSON(http.StatusOK, gin.H{"agents": response})
}

// CreateAgent handles POST /api/v1/agents
// Adds a roster entry; email and mobile must be unique
func (h *AgentHandler) CreateAgent(c *gin.Context) {
	var req dto.CreateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid agent payload", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Name, a valid email and a mobile in +91 format are required",
		})
		return
	}

	now := time.Now().UTC()
	agent := model.Agent{
		AgentID:   uuid.New().String(),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Mobile:    strings.TrimSpace(req.Mobile),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.storage.CreateAgent(c.Request.Context(), &agent); err != nil {
		h.logger.Error("Failed to create agent", slog.String("error", err.Error()))
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Agent created successfully",
		"agent": dto.AgentDTO{
			AgentID: agent.AgentID,
			Name:    agent.Name,
			Email:   agent.Email,
			Mobile:  agent.Mobile,
		},
	})
}
