package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HenryGill4/OpCentrix-sub007/internal/application"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/logging"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/middleware"
)

// CatalogHandlers contains handlers for the stage catalog and the dependency
// graph
type CatalogHandlers struct {
	stages       *application.StageApplicationService
	dependencies *application.DependencyApplicationService
	logger       *logging.Logger
}

// NewCatalogHandlers creates a new CatalogHandlers
func NewCatalogHandlers(
	stages *application.StageApplicationService,
	dependencies *application.DependencyApplicationService,
	logger *logging.Logger,
) *CatalogHandlers {
	return &CatalogHandlers{
		stages:       stages,
		dependencies: dependencies,
		logger:       logger,
	}
}

// RegisterRoutes registers catalog routes on the router
func (h *CatalogHandlers) RegisterRoutes(router *gin.RouterGroup) {
	stages := router.Group("/stages")
	{
		stages.POST("", h.CreateStage)
		stages.GET("", h.ListStages)
		stages.GET("/:stageId", h.GetStage)
		stages.PUT("/:stageId", h.UpdateStage)
		stages.DELETE("/:stageId", h.DeactivateStage)
		stages.GET("/:stageId/prerequisites", h.GetPrerequisites)
		stages.GET("/:stageId/dependents", h.GetDependents)
	}

	dependencies := router.Group("/stage-dependencies")
	{
		dependencies.POST("", h.AddDependency)
		dependencies.GET("", h.ListDependencies)
		dependencies.DELETE("/:edgeId", h.RemoveDependency)
	}
}

type stageRequest struct {
	Name                 string  `json:"name" binding:"required"`
	DisplayOrder         int     `json:"displayOrder"`
	DefaultSetupMinutes  int     `json:"defaultSetupMinutes"`
	DefaultHourlyRate    float64 `json:"defaultHourlyRate"`
	RequiresQualityCheck bool    `json:"requiresQualityCheck"`
	RequiresApproval     bool    `json:"requiresApproval"`
	AllowSkip            bool    `json:"allowSkip"`
	IsOptional           bool    `json:"isOptional"`
	RequiredCapability   string  `json:"requiredCapability"`
}

// CreateStage handles stage creation
func (h *CatalogHandlers) CreateStage(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req stageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responder.RespondBadRequest(err.Error())
		return
	}

	cmd := application.CreateStageCommand{
		Name:                 req.Name,
		DisplayOrder:         req.DisplayOrder,
		DefaultSetupMinutes:  req.DefaultSetupMinutes,
		DefaultHourlyRate:    req.DefaultHourlyRate,
		RequiresQualityCheck: req.RequiresQualityCheck,
		RequiresApproval:     req.RequiresApproval,
		AllowSkip:            req.AllowSkip,
		IsOptional:           req.IsOptional,
		RequiredCapability:   req.RequiredCapability,
		CreatedBy:            c.GetHeader(HeaderOperatorID),
	}

	stage, err := h.stages.CreateStage(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusCreated, stage)
}

// GetStage handles getting a stage by ID
func (h *CatalogHandlers) GetStage(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	stage, err := h.stages.GetStage(c.Request.Context(), c.Param("stageId"))
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, stage)
}

// ListStages handles listing active stages
func (h *CatalogHandlers) ListStages(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	stages, err := h.stages.ListStages(c.Request.Context())
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, stages)
}

// UpdateStage handles replacing a stage's attributes
func (h *CatalogHandlers) UpdateStage(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req stageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responder.RespondBadRequest(err.Error())
		return
	}

	cmd := application.UpdateStageCommand{
		StageID:              c.Param("stageId"),
		Name:                 req.Name,
		DisplayOrder:         req.DisplayOrder,
		DefaultSetupMinutes:  req.DefaultSetupMinutes,
		DefaultHourlyRate:    req.DefaultHourlyRate,
		RequiresQualityCheck: req.RequiresQualityCheck,
		RequiresApproval:     req.RequiresApproval,
		AllowSkip:            req.AllowSkip,
		IsOptional:           req.IsOptional,
		RequiredCapability:   req.RequiredCapability,
		ModifiedBy:           c.GetHeader(HeaderOperatorID),
	}

	stage, err := h.stages.UpdateStage(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, stage)
}

// DeactivateStage handles soft-deleting a stage
func (h *CatalogHandlers) DeactivateStage(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	cmd := application.DeactivateStageCommand{
		StageID:       c.Param("stageId"),
		DeactivatedBy: c.GetHeader(HeaderOperatorID),
	}

	stage, err := h.stages.DeactivateStage(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, stage)
}

// AddDependency handles adding a dependency edge
func (h *CatalogHandlers) AddDependency(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req struct {
		DependentStageID    string `json:"dependentStageId" binding:"required"`
		PrerequisiteStageID string `json:"prerequisiteStageId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responder.RespondBadRequest(err.Error())
		return
	}

	cmd := application.AddDependencyCommand{
		DependentStageID:    req.DependentStageID,
		PrerequisiteStageID: req.PrerequisiteStageID,
		CreatedBy:           c.GetHeader(HeaderOperatorID),
	}

	edge, err := h.dependencies.AddDependency(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusCreated, edge)
}

// RemoveDependency handles tombstoning a dependency edge
func (h *CatalogHandlers) RemoveDependency(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	cmd := application.RemoveDependencyCommand{
		EdgeID:    c.Param("edgeId"),
		RemovedBy: c.GetHeader(HeaderOperatorID),
	}

	edge, err := h.dependencies.RemoveDependency(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, edge)
}

// ListDependencies handles listing active dependency edges
func (h *CatalogHandlers) ListDependencies(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	edges, err := h.dependencies.ListDependencies(c.Request.Context())
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, edges)
}

// GetPrerequisites handles listing a stage's direct prerequisites
func (h *CatalogHandlers) GetPrerequisites(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	prereqs, err := h.dependencies.GetPrerequisites(c.Request.Context(), c.Param("stageId"))
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stageId": c.Param("stageId"), "prerequisites": prereqs})
}

// GetDependents handles listing a stage's direct dependents
func (h *CatalogHandlers) GetDependents(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	dependents, err := h.dependencies.GetDependents(c.Request.Context(), c.Param("stageId"))
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stageId": c.Param("stageId"), "dependents": dependents})
}
