package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/luneclub/lune/backend/internal/models"
	"github.com/luneclub/lune/backend/pkg/logger"
)

// recordAdminAction appends one audit entry inside the caller's transaction
// so the entry commits or rolls back with the change it describes.
func recordAdminAction(tx *gorm.DB, actor Actor, actionType string, targetUserID *uint, notes string) error {
	entry := models.AdminActionLog{
		AdminID:      actor.UserID,
		ActionType:   actionType,
		TargetUserID: targetUserID,
		Notes:        notes,
		CreatedAt:    timeNow(),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return err
	}

	logger.Info().
		Uint("admin_id", actor.UserID).
		Str("action", actionType).
		Interface("target_user_id", targetUserID).
		Msg(notes)
	return nil
}

type AdminLogService struct {
	db *gorm.DB
}

func NewAdminLogService(db *gorm.DB) *AdminLogService {
	return &AdminLogService{db: db}
}

type AdminLogListRequest struct {
	Page
	ActionType   string `form:"action_type"`
	AdminID      uint   `form:"admin_id"`
	TargetUserID uint   `form:"target_user_id"`
}

// List returns audit entries newest first.
func (s *AdminLogService) List(ctx context.Context, req *AdminLogListRequest) (*ListResponse[models.AdminActionLog], error) {
	req.normalize(20)

	query := s.db.WithContext(ctx).Model(&models.AdminActionLog{})
	if req.ActionType != "" {
		query = query.Where("action_type = ?", req.ActionType)
	}
	if req.AdminID != 0 {
		query = query.Where("admin_id = ?", req.AdminID)
	}
	if req.TargetUserID != 0 {
		query = query.Where("target_user_id = ?", req.TargetUserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []models.AdminActionLog
	if err := query.Order("created_at DESC, id DESC").Offset(req.offset()).Limit(req.PageSize).Find(&items).Error; err != nil {
		return nil, err
	}

	return &ListResponse[models.AdminActionLog]{
		Total:    total,
		Page:     req.Page.Page,
		PageSize: req.PageSize,
		Items:    items,
	}, nil
}

// ActionTypes returns the distinct action types present in the log.
func (s *AdminLogService) ActionTypes(ctx context.Context) ([]string, error) {
	var types []string
	err := s.db.WithContext(ctx).Model(&models.AdminActionLog{}).
		Distinct("action_type").Order("action_type").Pluck("action_type", &types).Error
	return types, err
}
