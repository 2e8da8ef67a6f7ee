package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/luneclub/lune/backend/internal/models"
	"github.com/luneclub/lune/backend/pkg/response"
)

type CastAdminService struct {
	db *gorm.DB
}

func NewCastAdminService(db *gorm.DB) *CastAdminService {
	return &CastAdminService{db: db}
}

type CastListRequest struct {
	Page
	Search string `form:"search"`
	Status string `form:"status" binding:"omitempty,oneof=active inactive pending"`
}

// List returns every cast profile, active or not, newest first.
func (s *CastAdminService) List(ctx context.Context, actor Actor, req *CastListRequest) (*ListResponse[models.Cast], error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	req.normalize(20)

	query := s.db.WithContext(ctx).Model(&models.Cast{}).
		Joins("JOIN users ON users.id = casts.user_id")
	if req.Search != "" {
		like := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(users.nickname) LIKE ? OR LOWER(users.email) LIKE ?", like, like)
	}
	switch req.Status {
	case "active":
		query = query.Where("casts.is_active = ?", true)
	case "inactive":
		query = query.Where("casts.is_active = ?", false)
	case "pending":
		query = query.Where("users.verification_status = ?", models.VerificationPending)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []models.Cast
	err := query.
		Preload("User").
		Preload("Photos", orderByDisplay).
		Order("casts.created_at DESC, casts.id DESC").
		Offset(req.offset()).Limit(req.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return &ListResponse[models.Cast]{
		Total:    total,
		Page:     req.Page.Page,
		PageSize: req.PageSize,
		Items:    items,
	}, nil
}

func (s *CastAdminService) load(tx *gorm.DB, id uint) (*models.Cast, error) {
	var cast models.Cast
	if err := tx.Preload("User").Preload("Photos", orderByDisplay).First(&cast, id).Error; err != nil {
		return nil, notFoundOr(err, "cast not found")
	}
	return &cast, nil
}

// Approve verifies the cast's account and makes the profile visible.
func (s *CastAdminService) Approve(ctx context.Context, actor Actor, id uint) (*models.Cast, error) {
	return s.mutate(ctx, actor, id, func(tx *gorm.DB, cast *models.Cast) (string, string, error) {
		if cast.IsActive && cast.User.VerificationStatus == models.VerificationApproved {
			return "", "", response.NewInvalidState("cast is already approved")
		}
		if err := tx.Model(&models.User{}).Where("id = ?", cast.UserID).
			Updates(map[string]interface{}{
				"verification_status": models.VerificationApproved,
				"verified_at":         timeNow(),
			}).Error; err != nil {
			return "", "", err
		}
		if err := tx.Model(&models.Cast{}).Where("id = ?", cast.ID).Update("is_active", true).Error; err != nil {
			return "", "", err
		}
		return models.ActionApproveCast, "Approved cast " + cast.DisplayName(), nil
	})
}

// Deactivate hides the cast from the directory. Open requests are left
// for staff to resolve.
func (s *CastAdminService) Deactivate(ctx context.Context, actor Actor, id uint) (*models.Cast, error) {
	return s.mutate(ctx, actor, id, func(tx *gorm.DB, cast *models.Cast) (string, string, error) {
		if !cast.IsActive {
			return "", "", response.NewInvalidState("cast is already inactive")
		}
		if err := tx.Model(&models.Cast{}).Where("id = ?", cast.ID).Update("is_active", false).Error; err != nil {
			return "", "", err
		}
		return models.ActionDeactivateCast, "Deactivated cast " + cast.DisplayName(), nil
	})
}

func (s *CastAdminService) ToggleFeatured(ctx context.Context, actor Actor, id uint) (*models.Cast, error) {
	return s.mutate(ctx, actor, id, func(tx *gorm.DB, cast *models.Cast) (string, string, error) {
		next := !cast.IsFeatured
		if err := tx.Model(&models.Cast{}).Where("id = ?", cast.ID).Update("is_featured", next).Error; err != nil {
			return "", "", err
		}
		verb := "Unfeatured"
		if next {
			verb = "Featured"
		}
		return models.ActionFeatureCast, verb + " cast " + cast.DisplayName(), nil
	})
}

type SetCastTierRequest struct {
	Tier models.CastTier `json:"tier" binding:"required,cast_tier"`
}

// SetTierClassification retags the cast. Existing requests keep their
// status; the new tag gates only later requests.
func (s *CastAdminService) SetTierClassification(ctx context.Context, actor Actor, id uint, tier models.CastTier) (*models.Cast, error) {
	if !tier.Valid() {
		return nil, response.NewValidation(fmt.Sprintf("unknown cast tier %q", tier))
	}
	return s.mutate(ctx, actor, id, func(tx *gorm.DB, cast *models.Cast) (string, string, error) {
		if cast.TierClassification == tier {
			return "", "", response.NewInvalidState(fmt.Sprintf("cast is already %s", tier))
		}
		if err := tx.Model(&models.Cast{}).Where("id = ?", cast.ID).Update("tier_classification", tier).Error; err != nil {
			return "", "", err
		}
		return models.ActionClassifyCast,
			fmt.Sprintf("Set cast %s tier from %s to %s", cast.DisplayName(), cast.TierClassification, tier), nil
	})
}

func (s *CastAdminService) mutate(ctx context.Context, actor Actor, id uint, apply func(*gorm.DB, *models.Cast) (string, string, error)) (*models.Cast, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cast, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if cast.User == nil {
			return response.NewNotFound("cast account not found")
		}
		action, notes, err := apply(tx, cast)
		if err != nil {
			return err
		}
		return recordAdminAction(tx, actor, action, &cast.UserID, notes)
	})
	if err != nil {
		return nil, err
	}
	return s.load(s.db.WithContext(ctx), id)
}
