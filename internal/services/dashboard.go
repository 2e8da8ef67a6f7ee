package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/luneclub/lune/backend/internal/models"
)

type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

type DashboardStatsRequest struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

// window resolves the reporting range, defaulting to the last seven days.
func (r *DashboardStatsRequest) window(now time.Time) (time.Time, time.Time) {
	startDate := now.AddDate(0, 0, -7)
	endDate := now
	if r.StartDate != "" {
		if t, err := time.Parse("2006-01-02", r.StartDate); err == nil {
			startDate = t
		}
	}
	if r.EndDate != "" {
		if t, err := time.Parse("2006-01-02", r.EndDate); err == nil {
			endDate = t.Add(24*time.Hour - time.Second)
		}
	}
	return startDate, endDate
}

type AdminStats struct {
	MembersByTier        map[models.MemberTier]int64    `json:"members_by_tier"`
	PendingVerifications int64                          `json:"pending_verifications"`
	ActiveCasts          int64                          `json:"active_casts"`
	TotalCasts           int64                          `json:"total_casts"`
	RequestsByStatus     map[models.MeetingStatus]int64 `json:"requests_by_status"`
	NewRequests          int64                          `json:"new_requests"`
	NewMembers           int64                          `json:"new_members"`
}

type MemberStats struct {
	Tier             models.MemberTier              `json:"tier"`
	RequestsByStatus map[models.MeetingStatus]int64 `json:"requests_by_status"`
	Bookmarks        int64                          `json:"bookmarks"`
}

type CastStats struct {
	IsActive           bool                           `json:"is_active"`
	TierClassification models.CastTier                `json:"tier_classification"`
	RequestsByStatus   map[models.MeetingStatus]int64 `json:"requests_by_status"`
	BookmarkedBy       int64                          `json:"bookmarked_by"`
}

// DashboardResponse carries the section matching the caller's role.
type DashboardResponse struct {
	Role   models.Role  `json:"role"`
	Admin  *AdminStats  `json:"admin,omitempty"`
	Member *MemberStats `json:"member,omitempty"`
	Cast   *CastStats   `json:"cast,omitempty"`
}

func (s *DashboardService) GetStats(ctx context.Context, actor Actor, req *DashboardStatsRequest) (*DashboardResponse, error) {
	if err := requireRole(actor, models.RoleAdmin, models.RoleMember, models.RoleCast); err != nil {
		return nil, err
	}
	if req == nil {
		req = &DashboardStatsRequest{}
	}

	resp := &DashboardResponse{Role: actor.Role}
	var err error
	switch actor.Role {
	case models.RoleAdmin:
		resp.Admin, err = s.adminStats(ctx, req)
	case models.RoleMember:
		resp.Member, err = s.memberStats(ctx, actor.UserID)
	case models.RoleCast:
		resp.Cast, err = s.castStats(ctx, actor.UserID)
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

type statusCount struct {
	Status models.MeetingStatus
	Count  int64
}

func (s *DashboardService) requestsByStatus(query *gorm.DB) (map[models.MeetingStatus]int64, error) {
	var rows []statusCount
	if err := query.Model(&models.MeetingRequest{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := map[models.MeetingStatus]int64{
		models.MeetingPending:   0,
		models.MeetingConfirmed: 0,
		models.MeetingCompleted: 0,
		models.MeetingCancelled: 0,
	}
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}

func (s *DashboardService) adminStats(ctx context.Context, req *DashboardStatsRequest) (*AdminStats, error) {
	db := s.db.WithContext(ctx)
	stats := &AdminStats{MembersByTier: map[models.MemberTier]int64{}}

	var tiers []struct {
		Tier  models.MemberTier
		Count int64
	}
	if err := db.Model(&models.Member{}).Select("tier, COUNT(*) as count").Group("tier").Scan(&tiers).Error; err != nil {
		return nil, err
	}
	for _, t := range []models.MemberTier{models.TierStandard, models.TierGold, models.TierVIP} {
		stats.MembersByTier[t] = 0
	}
	for _, t := range tiers {
		stats.MembersByTier[t.Tier] = t.Count
	}

	db.Model(&models.User{}).
		Where("role IN ? AND verification_status = ?", []models.Role{models.RoleMember, models.RoleCast}, models.VerificationPending).
		Count(&stats.PendingVerifications)
	db.Model(&models.Cast{}).Where("is_active = ?", true).Count(&stats.ActiveCasts)
	db.Model(&models.Cast{}).Count(&stats.TotalCasts)

	var err error
	if stats.RequestsByStatus, err = s.requestsByStatus(db); err != nil {
		return nil, err
	}

	startDate, endDate := req.window(timeNow())
	db.Model(&models.MeetingRequest{}).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Count(&stats.NewRequests)
	db.Model(&models.User{}).
		Where("role = ? AND created_at BETWEEN ? AND ?", models.RoleMember, startDate, endDate).
		Count(&stats.NewMembers)

	return stats, nil
}

func (s *DashboardService) memberStats(ctx context.Context, userID uint) (*MemberStats, error) {
	db := s.db.WithContext(ctx)
	var member models.Member
	if err := db.Where("user_id = ?", userID).First(&member).Error; err != nil {
		return nil, notFoundOr(err, "member profile not found")
	}

	byStatus, err := s.requestsByStatus(db.Where("member_id = ?", member.ID))
	if err != nil {
		return nil, err
	}
	stats := &MemberStats{Tier: member.Tier, RequestsByStatus: byStatus}
	db.Model(&models.Bookmark{}).Where("member_id = ?", member.ID).Count(&stats.Bookmarks)
	return stats, nil
}

func (s *DashboardService) castStats(ctx context.Context, userID uint) (*CastStats, error) {
	db := s.db.WithContext(ctx)
	var cast models.Cast
	if err := db.Where("user_id = ?", userID).First(&cast).Error; err != nil {
		return nil, notFoundOr(err, "cast profile not found")
	}

	byStatus, err := s.requestsByStatus(db.Where("cast_id = ?", cast.ID))
	if err != nil {
		return nil, err
	}
	stats := &CastStats{
		IsActive:           cast.IsActive,
		TierClassification: cast.TierClassification,
		RequestsByStatus:   byStatus,
	}
	db.Model(&models.Bookmark{}).Where("cast_id = ?", cast.ID).Count(&stats.BookmarkedBy)
	return stats, nil
}
