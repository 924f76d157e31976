package router

import (
	"net/http"
	"regexp"

	"github.com/dialdesk/dialdesk-be/internal/api/handler"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Mobile must be +91 followed by 10 digits, matching the roster format of the
// source system.
var mobileRegex = regexp.MustCompile(`^\+91\d{10}$`)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	registerValidations()

	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint reporting database and broker status
	r.GET("/health", func(c *gin.Context) {
		overall := "healthy"
		status := http.StatusOK

		dbStatus := "up"
		if err := deps.DB.HealthCheck(c.Request.Context()); err != nil {
			overall = "unhealthy"
			status = http.StatusServiceUnavailable
			dbStatus = "down"
		}

		brokerStatus := "up"
		if !deps.Rabbit.IsConnected() {
			overall = "unhealthy"
			status = http.StatusServiceUnavailable
			brokerStatus = "down"
		}

		c.JSON(status, gin.H{
			"status":   overall,
			"service":  "dialdesk-api-service",
			"database": dbStatus,
			"rabbitmq": brokerStatus,
		})
	})

	agentHandler := handler.NewAgentHandler(deps)
	listHandler := handler.NewListHandler(deps)
	callQueueHandler := handler.NewCallQueueHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		agents := v1.Group("/agents")
		{
			agents.GET("", agentHandler.ListAgents)
			agents.POST("", agentHandler.CreateAgent)
		}

		lists := v1.Group("/lists")
		{
			// POST /api/v1/lists/upload - Ingest and distribute a contact list
			lists.POST("/upload", listHandler.UploadList)

			// GET /api/v1/lists/distributed - Assignments grouped by agent
			lists.GET("/distributed", listHandler.GetDistributed)

			// PATCH /api/v1/lists/:id/complete - Mark a list item done
			lists.PATCH("/:id/complete", listHandler.CompleteListItem)
		}

		callList := v1.Group("/call-list")
		{
			// POST /api/v1/call-list/upload - Replace and distribute the call queue
			callList.POST("/upload", callQueueHandler.UploadCallList)

			// GET /api/v1/call-list - Call queue in record-number order
			callList.GET("", callQueueHandler.GetCallList)

			// POST /api/v1/call-list/distribute - Re-link queue across the roster
			callList.POST("/distribute", callQueueHandler.Distribute)

			// PATCH /api/v1/call-list/:id/complete - Mark a call done
			callList.PATCH("/:id/complete", callQueueHandler.CompleteCall)

			// DELETE /api/v1/call-list - Clear the call queue
			callList.DELETE("", callQueueHandler.ClearCallList)
		}
	}

	return r
}

// registerValidations adds the custom binding validations used by the agent
// payloads
func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("inmobile", func(fl validator.FieldLevel) bool {
			return mobileRegex.MatchString(fl.Field().String())
		})
	}
}
