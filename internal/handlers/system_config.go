package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/luneclub/lune/backend/internal/services"
	"github.com/luneclub/lune/backend/pkg/response"
)

type SystemConfigHandler struct {
	configService *services.SystemConfigService
}

func NewSystemConfigHandler(db *gorm.DB) *SystemConfigHandler {
	return &SystemConfigHandler{
		configService: services.NewSystemConfigService(db),
	}
}

// List returns every setting, or one group with ?group=.
func (h *SystemConfigHandler) List(c *gin.Context) {
	var (
		configs interface{}
		err     error
	)
	if group := c.Query("group"); group != "" {
		configs, err = h.configService.GetByGroup(group)
	} else {
		configs, err = h.configService.List()
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, configs)
}

func (h *SystemConfigHandler) Update(c *gin.Context) {
	var req services.UpdateSystemConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.configService.Update(&req); err != nil {
		response.Error(c, err)
		return
	}

	configs, err := h.configService.List()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, configs)
}
