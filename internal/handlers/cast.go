package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/luneclub/lune/backend/internal/middleware"
	"github.com/luneclub/lune/backend/internal/services"
	"github.com/luneclub/lune/backend/pkg/response"
)

// CastHandler serves the cast directory to signed-in users.
type CastHandler struct {
	directory *services.DirectoryService
}

func NewCastHandler(db *gorm.DB) *CastHandler {
	return &CastHandler{directory: services.NewDirectoryService(db)}
}

// Browse
// GET /api/casts?minAge=&maxAge=&languages=en,ja&location=&interests=&search=&sort=
func (h *CastHandler) Browse(c *gin.Context) {
	var criteria services.BrowseCriteria
	if err := c.ShouldBindQuery(&criteria); err != nil {
		bindError(c, err)
		return
	}
	criteria.Languages = splitCSV(criteria.Languages)
	criteria.Interests = splitCSV(criteria.Interests)

	result, err := h.directory.Browse(c.Request.Context(), middleware.GetActor(c), &criteria)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Get
// GET /api/casts/:id
func (h *CastHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id", "cast")
	if !ok {
		return
	}

	listing, err := h.directory.Get(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, listing)
}
