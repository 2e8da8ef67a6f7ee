package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/luneclub/lune/backend/internal/middleware"
	"github.com/luneclub/lune/backend/internal/services"
	"github.com/luneclub/lune/backend/pkg/response"
)

type BookmarkHandler struct {
	bookmarks *services.BookmarkService
}

func NewBookmarkHandler(db *gorm.DB) *BookmarkHandler {
	return &BookmarkHandler{bookmarks: services.NewBookmarkService(db)}
}

// Add
// POST /api/bookmarks
func (h *BookmarkHandler) Add(c *gin.Context) {
	var req services.BookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	bookmark, err := h.bookmarks.Add(c.Request.Context(), middleware.GetActor(c), req.CastID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, bookmark)
}

// Remove
// DELETE /api/bookmarks?castId=
func (h *BookmarkHandler) Remove(c *gin.Context) {
	var req services.BookmarkRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.bookmarks.Remove(c.Request.Context(), middleware.GetActor(c), req.CastID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"castId": req.CastID})
}

// List
// GET /api/bookmarks
func (h *BookmarkHandler) List(c *gin.Context) {
	bookmarks, err := h.bookmarks.List(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, bookmarks)
}
