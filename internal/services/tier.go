package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/luneclub/lune/backend/internal/models"
	"github.com/luneclub/lune/backend/pkg/response"
)

// TierService moves members one rung along the tier ladder.
type TierService struct {
	db *gorm.DB
}

func NewTierService(db *gorm.DB) *TierService {
	return &TierService{db: db}
}

func (s *TierService) Upgrade(ctx context.Context, actor Actor, memberID uint) (*models.Member, error) {
	return s.step(ctx, actor, memberID, true)
}

func (s *TierService) Downgrade(ctx context.Context, actor Actor, memberID uint) (*models.Member, error) {
	return s.step(ctx, actor, memberID, false)
}

func (s *TierService) step(ctx context.Context, actor Actor, memberID uint, up bool) (*models.Member, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}

	var member models.Member
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("User").First(&member, memberID).Error; err != nil {
			return notFoundOr(err, "member not found")
		}

		from := member.Tier
		current, known := from.Canonical()
		if !known {
			return response.NewInvalidState(fmt.Sprintf("member has an unrecognised tier (%s)", from))
		}
		to, ok := current.Next()
		verb, action := "Upgraded", models.ActionUpgradeMemberTier
		if !up {
			to, ok = current.Prev()
			verb, action = "Downgraded", models.ActionDowngradeMemberTier
		}
		if !ok {
			if up {
				return response.NewInvalidState(fmt.Sprintf("member is already at the highest tier (%s)", current))
			}
			return response.NewInvalidState(fmt.Sprintf("member is already at the lowest tier (%s)", current))
		}

		res := tx.Model(&models.Member{}).
			Where("id = ? AND tier = ?", member.ID, from).
			Updates(map[string]interface{}{"tier": to, "updated_at": timeNow()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return response.NewInvalidState("member tier was changed concurrently")
		}
		member.Tier = to

		name := fmt.Sprintf("member #%d", member.ID)
		if member.User != nil && member.User.Nickname != "" {
			name = member.User.Nickname
		}
		notes := fmt.Sprintf("%s %s from %s to %s", verb, name, from, to)
		return recordAdminAction(tx, actor, action, &member.UserID, notes)
	})
	if err != nil {
		return nil, err
	}
	return &member, nil
}
