package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HenryGill4/OpCentrix-sub007/internal/application"
	"github.com/HenryGill4/OpCentrix-sub007/internal/domain"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/logging"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/middleware"
)

// RequirementHandlers contains handlers for part pipeline authoring and
// workflow templates
type RequirementHandlers struct {
	service *application.RequirementApplicationService
	logger  *logging.Logger
}

// NewRequirementHandlers creates a new RequirementHandlers
func NewRequirementHandlers(service *application.RequirementApplicationService, logger *logging.Logger) *RequirementHandlers {
	return &RequirementHandlers{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers requirement routes on the router
func (h *RequirementHandlers) RegisterRoutes(router *gin.RouterGroup) {
	parts := router.Group("/parts")
	{
		parts.POST("/:partId/requirements", h.AddRequirement)
		parts.GET("/:partId/requirements", h.ListRequirements)
		parts.GET("/:partId/required-stages", h.GetRequiredStages)
		parts.POST("/:partId/apply-template/:templateId", h.ApplyTemplate)
	}

	router.DELETE("/requirements/:requirementId", h.RemoveRequirement)

	templates := router.Group("/templates")
	{
		templates.POST("", h.CreateTemplate)
		templates.GET("", h.ListTemplates)
		templates.GET("/:templateId", h.GetTemplate)
	}
}

// AddRequirement handles adding a requirement row to a part's pipeline
func (h *RequirementHandlers) AddRequirement(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req struct {
		StageID            string   `json:"stageId" binding:"required"`
		ExecutionOrder     int      `json:"executionOrder"`
		EstimatedHours     float64  `json:"estimatedHours"`
		SetupMinutes       int      `json:"setupMinutes"`
		HourlyRateOverride *float64 `json:"hourlyRateOverride"`
		MaterialCost       float64  `json:"materialCost"`
		IsRequired         *bool    `json:"isRequired"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responder.RespondBadRequest(err.Error())
		return
	}

	isRequired := true
	if req.IsRequired != nil {
		isRequired = *req.IsRequired
	}

	cmd := application.AddRequirementCommand{
		PartID:             c.Param("partId"),
		StageID:            req.StageID,
		ExecutionOrder:     req.ExecutionOrder,
		EstimatedHours:     req.EstimatedHours,
		SetupMinutes:       req.SetupMinutes,
		HourlyRateOverride: req.HourlyRateOverride,
		MaterialCost:       req.MaterialCost,
		IsRequired:         isRequired,
		CreatedBy:          c.GetHeader(HeaderOperatorID),
	}

	requirement, err := h.service.AddRequirement(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusCreated, requirement)
}

// ListRequirements handles listing a part's active requirement rows
func (h *RequirementHandlers) ListRequirements(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	requirements, err := h.service.ListRequirements(c.Request.Context(), c.Param("partId"))
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, requirements)
}

// GetRequiredStages handles resolving a part's ordered stage pipeline
func (h *RequirementHandlers) GetRequiredStages(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	query := application.RequiredStagesQuery{PartID: c.Param("partId")}

	stages, err := h.service.GetRequiredStages(c.Request.Context(), query)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, stages)
}

// RemoveRequirement handles tombstoning a requirement row
func (h *RequirementHandlers) RemoveRequirement(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	cmd := application.RemoveRequirementCommand{
		RequirementID: c.Param("requirementId"),
		RemovedBy:     c.GetHeader(HeaderOperatorID),
	}

	requirement, err := h.service.RemoveRequirement(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, requirement)
}

// CreateTemplate handles defining a workflow template
func (h *RequirementHandlers) CreateTemplate(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req struct {
		Name   string                 `json:"name" binding:"required"`
		Stages []domain.TemplateStage `json:"stages" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responder.RespondBadRequest(err.Error())
		return
	}

	cmd := application.CreateTemplateCommand{
		Name:      req.Name,
		Stages:    req.Stages,
		CreatedBy: c.GetHeader(HeaderOperatorID),
	}

	template, err := h.service.CreateTemplate(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusCreated, template)
}

// GetTemplate handles getting a template by ID
func (h *RequirementHandlers) GetTemplate(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	template, err := h.service.GetTemplate(c.Request.Context(), c.Param("templateId"))
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, template)
}

// ListTemplates handles listing active templates
func (h *RequirementHandlers) ListTemplates(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	templates, err := h.service.ListTemplates(c.Request.Context())
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, templates)
}

// ApplyTemplate handles seeding a part's pipeline from a template
func (h *RequirementHandlers) ApplyTemplate(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	cmd := application.ApplyTemplateCommand{
		TemplateID: c.Param("templateId"),
		PartID:     c.Param("partId"),
		CreatedBy:  c.GetHeader(HeaderOperatorID),
	}

	requirements, err := h.service.ApplyTemplate(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusCreated, requirements)
}
