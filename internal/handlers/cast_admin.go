package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/luneclub/lune/backend/internal/middleware"
	"github.com/luneclub/lune/backend/internal/models"
	"github.com/luneclub/lune/backend/internal/services"
	"github.com/luneclub/lune/backend/pkg/response"
)

type CastAdminHandler struct {
	castService *services.CastAdminService
}

func NewCastAdminHandler(db *gorm.DB) *CastAdminHandler {
	return &CastAdminHandler{castService: services.NewCastAdminService(db)}
}

// List
// GET /api/admin/casts
func (h *CastAdminHandler) List(c *gin.Context) {
	var req services.CastListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.castService.List(c.Request.Context(), middleware.GetActor(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// POST /api/admin/casts/:id/approve
func (h *CastAdminHandler) Approve(c *gin.Context) {
	id, ok := parseID(c, "id", "cast")
	if !ok {
		return
	}
	h.respond(c)(h.castService.Approve(c.Request.Context(), middleware.GetActor(c), id))
}

// POST /api/admin/casts/:id/deactivate
func (h *CastAdminHandler) Deactivate(c *gin.Context) {
	id, ok := parseID(c, "id", "cast")
	if !ok {
		return
	}
	h.respond(c)(h.castService.Deactivate(c.Request.Context(), middleware.GetActor(c), id))
}

// POST /api/admin/casts/:id/toggle-featured
func (h *CastAdminHandler) ToggleFeatured(c *gin.Context) {
	id, ok := parseID(c, "id", "cast")
	if !ok {
		return
	}
	h.respond(c)(h.castService.ToggleFeatured(c.Request.Context(), middleware.GetActor(c), id))
}

// PUT /api/admin/casts/:id/tier
func (h *CastAdminHandler) SetTier(c *gin.Context) {
	id, ok := parseID(c, "id", "cast")
	if !ok {
		return
	}
	var req services.SetCastTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	h.respond(c)(h.castService.SetTierClassification(c.Request.Context(), middleware.GetActor(c), id, req.Tier))
}

func (h *CastAdminHandler) respond(c *gin.Context) func(*models.Cast, error) {
	return func(cast *models.Cast, err error) {
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, cast)
	}
}
