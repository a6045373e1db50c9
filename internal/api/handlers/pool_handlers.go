package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HenryGill4/OpCentrix-sub007/internal/application"
	"github.com/HenryGill4/OpCentrix-sub007/internal/domain"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/logging"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/middleware"
)

// PoolHandlers contains handlers for resource pool administration
type PoolHandlers struct {
	service *application.PoolApplicationService
	logger  *logging.Logger
}

// NewPoolHandlers creates a new PoolHandlers
func NewPoolHandlers(service *application.PoolApplicationService, logger *logging.Logger) *PoolHandlers {
	return &PoolHandlers{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers pool routes on the router
func (h *PoolHandlers) RegisterRoutes(router *gin.RouterGroup) {
	pools := router.Group("/pools")
	{
		pools.POST("", h.CreatePool)
		pools.GET("", h.ListPools)
		pools.GET("/:poolId", h.GetPool)
		pools.DELETE("/:poolId", h.DeactivatePool)
	}
}

// CreatePool handles defining a capacity pool
func (h *PoolHandlers) CreatePool(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req struct {
		Name     string `json:"name" binding:"required"`
		Scope    string `json:"scope" binding:"required"`
		TargetID string `json:"targetId" binding:"required"`
		Capacity int    `json:"capacity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responder.RespondBadRequest(err.Error())
		return
	}

	cmd := application.CreatePoolCommand{
		Name:      req.Name,
		Scope:     domain.PoolScope(req.Scope),
		TargetID:  req.TargetID,
		Capacity:  req.Capacity,
		CreatedBy: c.GetHeader(HeaderOperatorID),
	}

	pool, err := h.service.CreatePool(c.Request.Context(), cmd)
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusCreated, pool)
}

// GetPool handles getting a pool by ID
func (h *PoolHandlers) GetPool(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	pool, err := h.service.GetPool(c.Request.Context(), c.Param("poolId"))
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, pool)
}

// ListPools handles listing active pools
func (h *PoolHandlers) ListPools(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	pools, err := h.service.ListPools(c.Request.Context())
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, pools)
}

// DeactivatePool handles soft-deleting a pool
func (h *PoolHandlers) DeactivatePool(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	pool, err := h.service.DeactivatePool(c.Request.Context(), c.Param("poolId"), c.GetHeader(HeaderOperatorID))
	if err != nil {
		responder.RespondWithError(err)
		return
	}

	c.JSON(http.StatusOK, pool)
}
