package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"naviai-server/internal/models"
	"naviai-server/internal/service"
)

// ScenarioHandler exposes the dashboard API over HTTP.
type ScenarioHandler struct {
	scenarios service.ScenarioService
	analysis  service.AnalysisService
	logger    *zap.Logger
}

func NewScenarioHandler(scenarios service.ScenarioService, analysis service.AnalysisService, logger *zap.Logger) *ScenarioHandler {
	return &ScenarioHandler{
		scenarios: scenarios,
		analysis:  analysis,
		logger:    logger.Named("ScenarioHandler"),
	}
}

// RegisterRoutes mounts the API under /api.
func (h *ScenarioHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/scenarios", h.listScenarios)
		api.POST("/scenarios", h.createScenario)
		api.PUT("/scenarios/:id", h.updateScenario)
		api.DELETE("/scenarios/:id", h.deleteScenario)
		api.GET("/scenarios/stats", h.getStats)
		api.GET("/scenarios/export", h.exportScenarios)
		api.POST("/analysis", h.analyzeText)
	}
}

func (h *ScenarioHandler) listScenarios(c *gin.Context) {
	search := c.Query("search")
	category := c.DefaultQuery("category", "all")

	scenarios, err := h.scenarios.ListScenarios(c.Request.Context(), search, category)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scenarios": scenarios, "total": len(scenarios)})
}

func (h *ScenarioHandler) createScenario(c *gin.Context) {
	var scenario models.Scenario
	if err := c.ShouldBindJSON(&scenario); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	created, err := h.scenarios.CreateScenario(c.Request.Context(), &scenario)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *ScenarioHandler) updateScenario(c *gin.Context) {
	var scenario models.Scenario
	if err := c.ShouldBindJSON(&scenario); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	// The path, not the body, names the record.
	scenario.ID = c.Param("id")

	updated, err := h.scenarios.UpdateScenario(c.Request.Context(), &scenario)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *ScenarioHandler) deleteScenario(c *gin.Context) {
	if err := h.scenarios.DeleteScenario(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ScenarioHandler) getStats(c *gin.Context) {
	stats, err := h.scenarios.GetStats(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *ScenarioHandler) exportScenarios(c *gin.Context) {
	payload, err := h.scenarios.ExportScenarios(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename=naviAI-scenarios.json`)
	c.Data(http.StatusOK, "application/json", payload)
}

type analyzeRequest struct {
	RawText string                 `json:"rawText" binding:"required"`
	Config  *models.AnalyzerConfig `json:"config"`
}

func (h *ScenarioHandler) analyzeText(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: rawText is required"})
		return
	}

	scenarios, err := h.analysis.AnalyzeText(c.Request.Context(), req.RawText, req.Config)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scenarios": scenarios, "created": len(scenarios)})
}

// respondError maps domain errors to HTTP statuses. Unknown errors are logged
// and hidden behind a generic 500.
func (h *ScenarioHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrEmptyInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrScenarioNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrScenarioAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrAnalysisFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Unhandled error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
