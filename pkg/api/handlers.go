package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zenithroofing/lead-service/pkg/config"
	"github.com/zenithroofing/lead-service/pkg/models"
	"github.com/zenithroofing/lead-service/pkg/services"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	leadService services.LeadService
	config      *config.Config
	logger      *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(leadService services.LeadService, cfg *config.Config, logger *zap.Logger) *Handlers {
	return &Handlers{
		leadService: leadService,
		config:      cfg,
		logger:      logger,
	}
}

// HealthCheck handler for monitoring
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// HandleLeadSubmission processes incoming lead submissions from the site
// forms and relays the CRM's status and body to the caller. OPTIONS never
// reaches this handler; the CORS middleware answers pre-flights.
func (h *Handlers) HandleLeadSubmission(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.String(http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	if !h.config.CRMConfigured() {
		h.logger.Error("CRM endpoint or key missing from environment")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Server not configured (missing env vars)"})
		return
	}

	sub, err := h.parseSubmission(c)
	if err != nil {
		h.logger.Warn("Unparseable submission body", zap.Error(err))
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	result := h.leadService.ProcessLeadSubmission(c.Request.Context(), sub, c.GetHeader("Origin"))
	c.Data(result.StatusCode, "application/json", result.Body)
}

// parseSubmission accepts JSON or x-www-form-urlencoded bodies; older
// embedded forms still post the latter.
func (h *Handlers) parseSubmission(c *gin.Context) (*models.LeadSubmission, error) {
	var sub models.LeadSubmission

	if strings.Contains(strings.ToLower(c.ContentType()), "application/json") {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(body, &sub); err != nil {
			return nil, err
		}
		return &sub, nil
	}

	if err := c.ShouldBind(&sub); err != nil {
		return nil, err
	}
	return &sub, nil
}
