package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/HenryGill4/OpCentrix-sub007/internal/application"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/logging"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/middleware"
)

// JobHandlers contains handlers for job and cohort scheduling
type JobHandlers struct {
	service *application.JobApplicationService
	logger  *logging.Logger
}

// NewJobHandlers creates a new JobHandlers
func NewJobHandlers(service *application.JobApplicationService, logger *logging.Logger) *JobHandlers {
	return &JobHandlers{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers job and cohort routes on the router
func (h *JobHandlers) RegisterRoutes(router *gin.RouterGroup) {
	jobs := router.Group("/jobs")
	{
		jobs.POST("", h.CreateJob)
		jobs.GET("", h.ListJobs)
		jobs.GET("/:jobId", h.GetJob)
	}

	cohorts := router.Group("/cohorts")
	{
		cohorts.POST("", h.CreateCohort)
		cohorts.GET("", h.ListCohorts)
		cohorts.GET("/:cohortId", h.GetCohort)
		cohorts.GET("/:cohortId/jobs", h.GetCohortJobs)
		cohorts.POST("/schedule", h.ScheduleCohort)
	}
}

// CreateJob handles scheduling a new job
func (h *JobHandlers) CreateJob(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req struct {
		PartID   string     `json:"partId" binding:"required"`
		Quantity int        `json:"quantity" binding:"required"`
		CohortID string     `json:"cohortId"`
		DueDate  *time.Time `json:"dueDate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responder.RespondBadRequest(err.Error())
		return
	}

	cmd := application.CreateJobCommand{
		PartID:    req.PartID,
		Quantity:  req.Quantity,
		CohortID:  req.CohortID,
		DueDate:   req.DueDate,
		CreatedBy: c.GetHeader(HeaderOperatorID),
	}

	job, err := h.service.CreateJob(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusCreated, job)
}

// GetJob handles getting a job by ID
func (h *JobHandlers) GetJob(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	job, err := h.service.GetJob(c.Request.Context(), c.Param("jobId"))
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListJobs handles listing active jobs
func (h *JobHandlers) ListJobs(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	jobs, err := h.service.ListJobs(c.Request.Context())
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, jobs)
}

// CreateCohort handles opening an empty build cohort
func (h *JobHandlers) CreateCohort(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responder.RespondBadRequest(err.Error())
		return
	}

	cmd := application.CreateCohortCommand{
		Name:      req.Name,
		CreatedBy: c.GetHeader(HeaderOperatorID),
	}

	cohort, err := h.service.CreateCohort(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusCreated, cohort)
}

// ScheduleCohort handles opening a cohort with its member jobs
func (h *JobHandlers) ScheduleCohort(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req struct {
		Name string `json:"name" binding:"required"`
		Jobs []struct {
			PartID   string `json:"partId" binding:"required"`
			Quantity int    `json:"quantity" binding:"required"`
		} `json:"jobs" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responder.RespondBadRequest(err.Error())
		return
	}

	specs := make([]application.CohortJobSpec, 0, len(req.Jobs))
	for _, job := range req.Jobs {
		specs = append(specs, application.CohortJobSpec{PartID: job.PartID, Quantity: job.Quantity})
	}

	cmd := application.ScheduleCohortCommand{
		Name:      req.Name,
		Jobs:      specs,
		CreatedBy: c.GetHeader(HeaderOperatorID),
	}

	cohort, jobs, err := h.service.ScheduleCohort(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"cohort": cohort, "jobs": jobs})
}

// GetCohort handles getting a cohort by ID
func (h *JobHandlers) GetCohort(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	cohort, err := h.service.GetCohort(c.Request.Context(), c.Param("cohortId"))
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, cohort)
}

// ListCohorts handles listing active cohorts
func (h *JobHandlers) ListCohorts(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	cohorts, err := h.service.ListCohorts(c.Request.Context())
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, cohorts)
}

// GetCohortJobs handles listing a cohort's member jobs
func (h *JobHandlers) GetCohortJobs(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	jobs, err := h.service.GetCohortJobs(c.Request.Context(), c.Param("cohortId"))
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, jobs)
}
