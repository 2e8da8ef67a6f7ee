package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/luneclub/lune/backend/internal/services"
	"github.com/luneclub/lune/backend/pkg/response"
)

type AdminLogHandler struct {
	adminLogService *services.AdminLogService
}

func NewAdminLogHandler(db *gorm.DB) *AdminLogHandler {
	return &AdminLogHandler{adminLogService: services.NewAdminLogService(db)}
}

// List
// GET /api/admin/logs
func (h *AdminLogHandler) List(c *gin.Context) {
	var req services.AdminLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.adminLogService.List(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GET /api/admin/logs/action-types
func (h *AdminLogHandler) ActionTypes(c *gin.Context) {
	types, err := h.adminLogService.ActionTypes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"action_types": types})
}
