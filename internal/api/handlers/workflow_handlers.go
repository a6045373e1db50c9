package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HenryGill4/OpCentrix-sub007/internal/application"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/logging"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/middleware"
)

// HeaderOperatorID identifies the acting operator when the body omits one
const HeaderOperatorID = "X-Operator-ID"

// WorkflowHandlers contains handlers for stage execution transitions
type WorkflowHandlers struct {
	service *application.WorkflowApplicationService
	logger  *logging.Logger
}

// NewWorkflowHandlers creates a new WorkflowHandlers
func NewWorkflowHandlers(service *application.WorkflowApplicationService, logger *logging.Logger) *WorkflowHandlers {
	return &WorkflowHandlers{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers workflow routes on the router
func (h *WorkflowHandlers) RegisterRoutes(router *gin.RouterGroup) {
	jobs := router.Group("/jobs")
	{
		jobs.GET("/:jobId/executions", h.GetJobExecutions)
		jobs.GET("/:jobId/stages/:stageId", h.GetExecution)
		jobs.GET("/:jobId/stages/:stageId/can-start", h.CanStart)
		jobs.POST("/:jobId/stages/:stageId/punch-in", h.PunchIn)
		jobs.POST("/:jobId/stages/:stageId/punch-out", h.PunchOut)
		jobs.POST("/:jobId/stages/:stageId/approve", h.Approve)
		jobs.POST("/:jobId/stages/:stageId/skip", h.Skip)
		jobs.POST("/:jobId/stages/:stageId/fail", h.Fail)
		jobs.POST("/:jobId/stages/:stageId/reset", h.Reset)
	}

	router.POST("/cohorts/:cohortId/reevaluate", h.ReevaluateCohort)
}

// operatorFrom resolves the acting operator from the body value or the
// X-Operator-ID header
func operatorFrom(c *gin.Context, body string) string {
	if body != "" {
		return body
	}
	return c.GetHeader(HeaderOperatorID)
}

// PunchIn handles starting a stage execution
func (h *WorkflowHandlers) PunchIn(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req struct {
		OperatorID string `json:"operatorId"`
		MachineID  string `json:"machineId"`
	}
	_ = c.ShouldBindJSON(&req)

	cmd := application.PunchInCommand{
		JobID:      c.Param("jobId"),
		StageID:    c.Param("stageId"),
		OperatorID: operatorFrom(c, req.OperatorID),
		MachineID:  req.MachineID,
	}

	execution, err := h.service.PunchIn(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, execution)
}

// PunchOut handles completing a stage execution
func (h *WorkflowHandlers) PunchOut(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req struct {
		OperatorID string `json:"operatorId"`
	}
	_ = c.ShouldBindJSON(&req)

	cmd := application.PunchOutCommand{
		JobID:      c.Param("jobId"),
		StageID:    c.Param("stageId"),
		OperatorID: operatorFrom(c, req.OperatorID),
	}

	execution, err := h.service.PunchOut(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, execution)
}

// Approve handles sign-off on a completed gated stage
func (h *WorkflowHandlers) Approve(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req struct {
		ApprovedBy string `json:"approvedBy"`
		Notes      string `json:"notes"`
	}
	_ = c.ShouldBindJSON(&req)

	cmd := application.ApproveExecutionCommand{
		JobID:      c.Param("jobId"),
		StageID:    c.Param("stageId"),
		ApprovedBy: operatorFrom(c, req.ApprovedBy),
		Notes:      req.Notes,
	}

	execution, err := h.service.Approve(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, execution)
}

// Skip handles skipping a stage for a job
func (h *WorkflowHandlers) Skip(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req struct {
		SkippedBy string `json:"skippedBy"`
	}
	_ = c.ShouldBindJSON(&req)

	cmd := application.SkipStageCommand{
		JobID:     c.Param("jobId"),
		StageID:   c.Param("stageId"),
		SkippedBy: operatorFrom(c, req.SkippedBy),
	}

	execution, err := h.service.Skip(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, execution)
}

// Fail handles failing an in-progress execution
func (h *WorkflowHandlers) Fail(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req struct {
		FailedBy string `json:"failedBy"`
		Reason   string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responder.RespondBadRequest(err.Error())
		return
	}

	cmd := application.FailExecutionCommand{
		JobID:    c.Param("jobId"),
		StageID:  c.Param("stageId"),
		FailedBy: operatorFrom(c, req.FailedBy),
		Reason:   req.Reason,
	}

	execution, err := h.service.Fail(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, execution)
}

// Reset handles the administrative reset of a failed execution
func (h *WorkflowHandlers) Reset(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req struct {
		ResetBy string `json:"resetBy"`
	}
	_ = c.ShouldBindJSON(&req)

	cmd := application.ResetExecutionCommand{
		JobID:   c.Param("jobId"),
		StageID: c.Param("stageId"),
		ResetBy: operatorFrom(c, req.ResetBy),
	}

	execution, err := h.service.ResetFailed(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, execution)
}

// ReevaluateCohort handles retrying the cohort completion check, typically
// after a downstream routing failure
func (h *WorkflowHandlers) ReevaluateCohort(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	if err := h.service.ReevaluateCohort(c.Request.Context(), c.Param("cohortId"), c.GetHeader(HeaderOperatorID)); err != nil {
		responder.RespondWithError(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CanStart handles punch-in eligibility queries
func (h *WorkflowHandlers) CanStart(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	query := application.CanStartQuery{
		JobID:   c.Param("jobId"),
		StageID: c.Param("stageId"),
	}

	result, err := h.service.CanStart(c.Request.Context(), query)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetExecution handles retrieving the execution record for a job stage
func (h *WorkflowHandlers) GetExecution(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	execution, err := h.service.GetExecution(c.Request.Context(), c.Param("jobId"), c.Param("stageId"))
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, execution)
}

// GetJobExecutions handles retrieving all execution records for a job
func (h *WorkflowHandlers) GetJobExecutions(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	executions, err := h.service.GetJobExecutions(c.Request.Context(), c.Param("jobId"))
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, executions)
}
