package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/luneclub/lune/backend/internal/middleware"
	"github.com/luneclub/lune/backend/internal/models"
	"github.com/luneclub/lune/backend/internal/services"
	"github.com/luneclub/lune/backend/pkg/response"
)

// MemberHandler is the admin member console.
type MemberHandler struct {
	memberService *services.MemberService
	tierService   *services.TierService
}

func NewMemberHandler(db *gorm.DB, uploads *services.UploadService, queue services.TaskQueue) *MemberHandler {
	return &MemberHandler{
		memberService: services.NewMemberService(db, uploads, queue),
		tierService:   services.NewTierService(db),
	}
}

func (h *MemberHandler) List(c *gin.Context) {
	var req services.MemberListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.memberService.List(c.Request.Context(), middleware.GetActor(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (h *MemberHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id", "member")
	if !ok {
		return
	}
	h.respond(c)(h.memberService.Get(c.Request.Context(), middleware.GetActor(c), id))
}

func (h *MemberHandler) Create(c *gin.Context) {
	var req services.CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	member, err := h.memberService.Create(c.Request.Context(), middleware.GetActor(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, member)
}

func (h *MemberHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id", "member")
	if !ok {
		return
	}
	var req services.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	h.respond(c)(h.memberService.Update(c.Request.Context(), middleware.GetActor(c), id, &req))
}

func (h *MemberHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id", "member")
	if !ok {
		return
	}
	if err := h.memberService.Delete(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"id": id})
}

// POST /api/admin/members/:id/upgrade
func (h *MemberHandler) Upgrade(c *gin.Context) {
	id, ok := parseID(c, "id", "member")
	if !ok {
		return
	}
	h.respond(c)(h.tierService.Upgrade(c.Request.Context(), middleware.GetActor(c), id))
}

// POST /api/admin/members/:id/downgrade
func (h *MemberHandler) Downgrade(c *gin.Context) {
	id, ok := parseID(c, "id", "member")
	if !ok {
		return
	}
	h.respond(c)(h.tierService.Downgrade(c.Request.Context(), middleware.GetActor(c), id))
}

func (h *MemberHandler) Approve(c *gin.Context) {
	id, ok := parseID(c, "id", "member")
	if !ok {
		return
	}
	h.respond(c)(h.memberService.Approve(c.Request.Context(), middleware.GetActor(c), id))
}

func (h *MemberHandler) ToggleActive(c *gin.Context) {
	id, ok := parseID(c, "id", "member")
	if !ok {
		return
	}
	h.respond(c)(h.memberService.ToggleActive(c.Request.Context(), middleware.GetActor(c), id))
}

func (h *MemberHandler) TogglePayment(c *gin.Context) {
	id, ok := parseID(c, "id", "member")
	if !ok {
		return
	}
	h.respond(c)(h.memberService.TogglePayment(c.Request.Context(), middleware.GetActor(c), id))
}

// AddPhotos registers already hosted photos by URL.
// POST /api/admin/members/:id/photos
func (h *MemberHandler) AddPhotos(c *gin.Context) {
	id, ok := parseID(c, "id", "member")
	if !ok {
		return
	}
	var req services.AddPhotosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	photos, err := h.memberService.AddPhotos(c.Request.Context(), middleware.GetActor(c), id, req.PhotoURLs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, photos)
}

// UploadPhoto stores the multipart "file" part as a new photo.
// POST /api/admin/members/:id/photos/upload
func (h *MemberHandler) UploadPhoto(c *gin.Context) {
	id, ok := parseID(c, "id", "member")
	if !ok {
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, response.NewValidation("file is required"))
		return
	}
	file, closeFile, err := openUpload(header)
	if err != nil {
		response.Error(c, response.NewValidation("unreadable upload"))
		return
	}
	defer closeFile()

	photo, err := h.memberService.UploadPhoto(c.Request.Context(), middleware.GetActor(c), id, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, photo)
}

// PUT /api/admin/members/:id/photos/order
func (h *MemberHandler) ReorderPhotos(c *gin.Context) {
	id, ok := parseID(c, "id", "member")
	if !ok {
		return
	}
	var req services.ReorderPhotosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	photos, err := h.memberService.ReorderPhotos(c.Request.Context(), middleware.GetActor(c), id, req.PhotoIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, photos)
}

// POST /api/admin/members/:id/photos/:photoId/verify
func (h *MemberHandler) VerifyPhoto(c *gin.Context) {
	id, ok := parseID(c, "id", "member")
	if !ok {
		return
	}
	photoID, ok := parseID(c, "photoId", "photo")
	if !ok {
		return
	}

	photo, err := h.memberService.VerifyPhoto(c.Request.Context(), middleware.GetActor(c), id, photoID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, photo)
}

// DELETE /api/admin/members/:id/photos/:photoId
func (h *MemberHandler) DeletePhoto(c *gin.Context) {
	id, ok := parseID(c, "id", "member")
	if !ok {
		return
	}
	photoID, ok := parseID(c, "photoId", "photo")
	if !ok {
		return
	}

	if err := h.memberService.DeletePhoto(c.Request.Context(), middleware.GetActor(c), id, photoID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"id": photoID})
}

// TempUpload stores a file ahead of the form that will reference it.
// POST /api/admin/uploads/temp
func (h *MemberHandler) TempUpload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, response.NewValidation("file is required"))
		return
	}
	file, closeFile, err := openUpload(header)
	if err != nil {
		response.Error(c, response.NewValidation("unreadable upload"))
		return
	}
	defer closeFile()

	stored, err := h.memberService.TempUpload(c.Request.Context(), middleware.GetActor(c), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, stored)
}

func (h *MemberHandler) respond(c *gin.Context) func(*models.Member, error) {
	return func(member *models.Member, err error) {
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, member)
	}
}
