package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/luneclub/lune/backend/internal/middleware"
	"github.com/luneclub/lune/backend/internal/models"
	"github.com/luneclub/lune/backend/internal/services"
	"github.com/luneclub/lune/backend/pkg/response"
)

// MeetingHandler covers both the member side and the admin queue of
// meeting requests.
type MeetingHandler struct {
	meetings *services.MeetingRequestService
}

func NewMeetingHandler(db *gorm.DB) *MeetingHandler {
	return &MeetingHandler{meetings: services.NewMeetingRequestService(db)}
}

// Request opens a meeting request with a cast.
// POST /api/meetings/request
func (h *MeetingHandler) Request(c *gin.Context) {
	var req services.CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	meeting, err := h.meetings.Create(c.Request.Context(), middleware.GetActor(c), req.CastID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, meeting)
}

// ListMine returns the caller's requests grouped by status.
// GET /api/meetings
func (h *MeetingHandler) ListMine(c *gin.Context) {
	grouped, err := h.meetings.ListForMember(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, grouped)
}

// List
// GET /api/admin/meeting-requests
func (h *MeetingHandler) List(c *gin.Context) {
	var req services.MeetingRequestListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.meetings.List(c.Request.Context(), middleware.GetActor(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Get
// GET /api/admin/meeting-requests/:id
func (h *MeetingHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id", "meeting request")
	if !ok {
		return
	}

	meeting, err := h.meetings.Get(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, meeting)
}

// Confirm
// POST /api/admin/meeting-requests/:id/confirm
func (h *MeetingHandler) Confirm(c *gin.Context) {
	id, ok := parseID(c, "id", "meeting request")
	if !ok {
		return
	}
	var req services.ConfirmMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	h.respond(c)(h.meetings.Confirm(c.Request.Context(), middleware.GetActor(c), id, &req))
}

// Complete
// POST /api/admin/meeting-requests/:id/complete
func (h *MeetingHandler) Complete(c *gin.Context) {
	id, ok := parseID(c, "id", "meeting request")
	if !ok {
		return
	}

	h.respond(c)(h.meetings.Complete(c.Request.Context(), middleware.GetActor(c), id))
}

// Cancel takes an optional adminNotes body.
// POST /api/admin/meeting-requests/:id/cancel
func (h *MeetingHandler) Cancel(c *gin.Context) {
	id, ok := parseID(c, "id", "meeting request")
	if !ok {
		return
	}
	var req services.CancelMeetingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}

	h.respond(c)(h.meetings.Cancel(c.Request.Context(), middleware.GetActor(c), id, req.AdminNotes))
}

func (h *MeetingHandler) respond(c *gin.Context) func(*models.MeetingRequest, error) {
	return func(meeting *models.MeetingRequest, err error) {
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, meeting)
	}
}
