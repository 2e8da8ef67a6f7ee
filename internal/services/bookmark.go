package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/luneclub/lune/backend/internal/models"
	"github.com/luneclub/lune/backend/pkg/response"
)

type BookmarkService struct {
	db *gorm.DB
}

func NewBookmarkService(db *gorm.DB) *BookmarkService {
	return &BookmarkService{db: db}
}

type BookmarkRequest struct {
	CastID uint `json:"castId" form:"castId" binding:"required"`
}

func (s *BookmarkService) memberFor(ctx context.Context, actor Actor) (*models.Member, error) {
	if err := requireRole(actor, models.RoleMember); err != nil {
		return nil, err
	}
	var member models.Member
	if err := s.db.WithContext(ctx).Where("user_id = ?", actor.UserID).First(&member).Error; err != nil {
		return nil, notFoundOr(err, "member profile not found")
	}
	return &member, nil
}

// Add bookmarks castID for the calling member.
func (s *BookmarkService) Add(ctx context.Context, actor Actor, castID uint) (*models.Bookmark, error) {
	member, err := s.memberFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	if castID == 0 {
		return nil, response.NewValidation("castId is required")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Cast{}).Where("id = ?", castID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, response.NewNotFound("cast not found")
	}

	bookmark := models.Bookmark{MemberID: member.ID, CastID: castID, CreatedAt: timeNow()}
	if err := s.db.WithContext(ctx).Create(&bookmark).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, response.NewConflict("cast is already bookmarked")
		}
		return nil, err
	}
	return &bookmark, nil
}

// Remove deletes the caller's bookmark for castID.
func (s *BookmarkService) Remove(ctx context.Context, actor Actor, castID uint) error {
	member, err := s.memberFor(ctx, actor)
	if err != nil {
		return err
	}

	res := s.db.WithContext(ctx).
		Where("member_id = ? AND cast_id = ?", member.ID, castID).
		Delete(&models.Bookmark{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return response.NewNotFound("bookmark not found")
	}
	return nil
}

// List returns the caller's bookmarks, newest first, with cast details.
func (s *BookmarkService) List(ctx context.Context, actor Actor) ([]models.Bookmark, error) {
	member, err := s.memberFor(ctx, actor)
	if err != nil {
		return nil, err
	}

	bookmarks := []models.Bookmark{}
	err = s.db.WithContext(ctx).
		Preload("Cast").
		Preload("Cast.User").
		Preload("Cast.Photos", orderByDisplay).
		Where("member_id = ?", member.ID).
		Order("created_at DESC, id DESC").
		Find(&bookmarks).Error
	return bookmarks, err
}
