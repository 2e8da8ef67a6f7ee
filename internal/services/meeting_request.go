package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/luneclub/lune/backend/internal/models"
	"github.com/luneclub/lune/backend/pkg/response"
)

type MeetingRequestService struct {
	db *gorm.DB
}

func NewMeetingRequestService(db *gorm.DB) *MeetingRequestService {
	return &MeetingRequestService{db: db}
}

type CreateMeetingRequest struct {
	CastID uint `json:"castId" binding:"required"`
}

// Create opens a PENDING request from the calling member to castID. A member
// may hold one open request per cast, and HIGH_CLASS casts need GOLD or above.
func (s *MeetingRequestService) Create(ctx context.Context, actor Actor, castID uint) (*models.MeetingRequest, error) {
	if err := requireRole(actor, models.RoleMember); err != nil {
		return nil, err
	}
	if castID == 0 {
		return nil, response.NewValidation("castId is required")
	}

	var created *models.MeetingRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member models.Member
		if err := tx.Where("user_id = ?", actor.UserID).First(&member).Error; err != nil {
			return notFoundOr(err, "member profile not found")
		}

		var cast models.Cast
		if err := tx.Where("id = ? AND is_active = ?", castID, true).First(&cast).Error; err != nil {
			return notFoundOr(err, "cast not found")
		}

		tier, known := member.Tier.Canonical()
		if !known {
			return response.NewInvalidState(fmt.Sprintf("member has an unrecognised tier (%s)", member.Tier))
		}
		required := cast.TierClassification.RequiredMemberTier()
		if !tier.AtLeast(required) {
			return response.NewForbidden(fmt.Sprintf("%s membership or higher is required for this cast", required))
		}

		var open int64
		if err := tx.Model(&models.MeetingRequest{}).
			Where("member_id = ? AND cast_id = ? AND status IN ?", member.ID, cast.ID, models.OpenStatuses()).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return errOpenRequestExists
		}

		req := models.NewMeetingRequest(member.ID, cast.ID, timeNow())
		if err := tx.Create(req).Error; err != nil {
			if isDuplicateKey(err) {
				return errOpenRequestExists
			}
			return err
		}
		created = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

var errOpenRequestExists = response.NewConflict("an open meeting request for this cast already exists")

// ConfirmMeetingRequest carries the scheduling details. ScheduledDate is
// RFC3339 or a datetime-local value such as "2025-06-01T10:00", read as UTC.
type ConfirmMeetingRequest struct {
	ScheduledDate *string `json:"scheduledDate"`
	Location      *string `json:"location"`
	AdminNotes    *string `json:"adminNotes"`
}

var scheduleLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func parseScheduledDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range scheduleLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, response.NewValidation(fmt.Sprintf("scheduledDate %q is not a valid date-time", raw))
}

// Confirm schedules a PENDING request. Both date and location are required.
func (s *MeetingRequestService) Confirm(ctx context.Context, actor Actor, id uint, req *ConfirmMeetingRequest) (*models.MeetingRequest, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	if req == nil || req.ScheduledDate == nil || strings.TrimSpace(*req.ScheduledDate) == "" {
		return nil, response.NewValidation("scheduledDate is required")
	}
	at, err := parseScheduledDate(*req.ScheduledDate)
	if err != nil {
		return nil, err
	}
	if req.Location == nil || strings.TrimSpace(*req.Location) == "" {
		return nil, response.NewValidation("location is required")
	}

	return s.transition(ctx, actor, id, models.MeetingConfirmed, func(m *models.MeetingRequest) {
		loc := strings.TrimSpace(*req.Location)
		m.ScheduledDate = &at
		m.Location = &loc
		if req.AdminNotes != nil {
			m.AdminNotes = req.AdminNotes
		}
	})
}

// Complete marks a CONFIRMED request as held.
func (s *MeetingRequestService) Complete(ctx context.Context, actor Actor, id uint) (*models.MeetingRequest, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.transition(ctx, actor, id, models.MeetingCompleted, nil)
}

type CancelMeetingRequest struct {
	AdminNotes *string `json:"adminNotes"`
}

// Cancel closes a PENDING or CONFIRMED request. Notes replace the existing
// ones only when given.
func (s *MeetingRequestService) Cancel(ctx context.Context, actor Actor, id uint, notes *string) (*models.MeetingRequest, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.transition(ctx, actor, id, models.MeetingCancelled, func(m *models.MeetingRequest) {
		if notes != nil {
			m.AdminNotes = notes
		}
	})
}

var meetingActions = map[models.MeetingStatus]string{
	models.MeetingConfirmed: models.ActionConfirmMeeting,
	models.MeetingCompleted: models.ActionCompleteMeeting,
	models.MeetingCancelled: models.ActionCancelMeeting,
}

// transition applies one state change and its audit entry atomically. The
// update is conditional on the status read, so a concurrent change makes it
// affect no rows and the call fails with InvalidState.
func (s *MeetingRequestService) transition(ctx context.Context, actor Actor, id uint, next models.MeetingStatus, mutate func(*models.MeetingRequest)) (*models.MeetingRequest, error) {
	var result models.MeetingRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Member").First(&result, id).Error; err != nil {
			return notFoundOr(err, "meeting request not found")
		}

		from := result.Status
		now := timeNow()
		if err := result.TransitionTo(next, now); err != nil {
			if errors.Is(err, models.ErrInvalidTransition) {
				return response.NewInvalidState(fmt.Sprintf("cannot move meeting request from %s to %s", from, next))
			}
			return err
		}
		if mutate != nil {
			mutate(&result)
		}
		result.UpdatedAt = now

		res := tx.Model(&models.MeetingRequest{}).
			Where("id = ? AND status = ?", result.ID, from).
			Updates(map[string]interface{}{
				"status":         result.Status,
				"scheduled_date": result.ScheduledDate,
				"location":       result.Location,
				"admin_notes":    result.AdminNotes,
				"confirmed_at":   result.ConfirmedAt,
				"completed_at":   result.CompletedAt,
				"cancelled_at":   result.CancelledAt,
				"active_key":     result.ActiveKey,
				"updated_at":     result.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return response.NewInvalidState("meeting request was changed concurrently")
		}

		var target *uint
		if result.Member != nil {
			target = &result.Member.UserID
		}
		notes := fmt.Sprintf("Meeting request #%d %s -> %s", result.ID, from, next)
		return recordAdminAction(tx, actor, meetingActions[next], target, notes)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// MemberMeetings groups a member's requests the way the member dashboard
// shows them.
type MemberMeetings struct {
	Pending   []models.MeetingRequest `json:"pending"`
	Upcoming  []models.MeetingRequest `json:"upcoming"`
	Completed []models.MeetingRequest `json:"completed"`
	Cancelled []models.MeetingRequest `json:"cancelled"`
}

// ListForMember returns the caller's own requests with cast details.
func (s *MeetingRequestService) ListForMember(ctx context.Context, actor Actor) (*MemberMeetings, error) {
	if err := requireRole(actor, models.RoleMember); err != nil {
		return nil, err
	}

	var member models.Member
	if err := s.db.WithContext(ctx).Where("user_id = ?", actor.UserID).First(&member).Error; err != nil {
		return nil, notFoundOr(err, "member profile not found")
	}

	var all []models.MeetingRequest
	err := s.db.WithContext(ctx).
		Preload("Cast").
		Preload("Cast.User").
		Preload("Cast.Photos", orderByDisplay).
		Where("member_id = ?", member.ID).
		Find(&all).Error
	if err != nil {
		return nil, err
	}
	return GroupMeetings(all), nil
}

// GroupMeetings splits requests by status: pending newest first, upcoming
// soonest first, completed most recent first, cancelled newest first.
func GroupMeetings(all []models.MeetingRequest) *MemberMeetings {
	out := &MemberMeetings{
		Pending:   []models.MeetingRequest{},
		Upcoming:  []models.MeetingRequest{},
		Completed: []models.MeetingRequest{},
		Cancelled: []models.MeetingRequest{},
	}
	for _, m := range all {
		switch m.Status {
		case models.MeetingPending:
			out.Pending = append(out.Pending, m)
		case models.MeetingConfirmed:
			out.Upcoming = append(out.Upcoming, m)
		case models.MeetingCompleted:
			out.Completed = append(out.Completed, m)
		case models.MeetingCancelled:
			out.Cancelled = append(out.Cancelled, m)
		}
	}

	newestFirst := func(list []models.MeetingRequest) {
		sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	}
	newestFirst(out.Pending)
	newestFirst(out.Cancelled)
	sort.SliceStable(out.Upcoming, func(i, j int) bool {
		return scheduledBefore(out.Upcoming[i], out.Upcoming[j])
	})
	sort.SliceStable(out.Completed, func(i, j int) bool {
		return scheduledBefore(out.Completed[j], out.Completed[i])
	})
	return out
}

// scheduledBefore orders by scheduled date; unscheduled rows sort last.
func scheduledBefore(a, b models.MeetingRequest) bool {
	switch {
	case a.ScheduledDate == nil:
		return false
	case b.ScheduledDate == nil:
		return true
	}
	return a.ScheduledDate.Before(*b.ScheduledDate)
}

type MeetingRequestListRequest struct {
	Page
	Status models.MeetingStatus `form:"status" binding:"omitempty,meeting_status"`
}

// List is the admin queue, newest first.
func (s *MeetingRequestService) List(ctx context.Context, actor Actor, req *MeetingRequestListRequest) (*ListResponse[models.MeetingRequest], error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	req.normalize(20)

	query := s.db.WithContext(ctx).Model(&models.MeetingRequest{})
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []models.MeetingRequest
	err := query.
		Preload("Member").
		Preload("Member.User").
		Preload("Cast").
		Preload("Cast.User").
		Order("created_at DESC, id DESC").
		Offset(req.offset()).Limit(req.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return &ListResponse[models.MeetingRequest]{
		Total:    total,
		Page:     req.Page.Page,
		PageSize: req.PageSize,
		Items:    items,
	}, nil
}

// Get returns one request. Members may only read their own.
func (s *MeetingRequestService) Get(ctx context.Context, actor Actor, id uint) (*models.MeetingRequest, error) {
	if err := requireRole(actor, models.RoleAdmin, models.RoleMember); err != nil {
		return nil, err
	}

	var m models.MeetingRequest
	err := s.db.WithContext(ctx).
		Preload("Member").
		Preload("Member.User").
		Preload("Cast").
		Preload("Cast.User").
		First(&m, id).Error
	if err != nil {
		return nil, notFoundOr(err, "meeting request not found")
	}
	if !actor.IsAdmin() && (m.Member == nil || m.Member.UserID != actor.UserID) {
		return nil, response.NewNotFound("meeting request not found")
	}
	return &m, nil
}
