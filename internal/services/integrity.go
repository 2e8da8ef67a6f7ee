package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/luneclub/lune/backend/internal/models"
)

// OrphanedUser is a MEMBER or CAST identity without its profile row.
type OrphanedUser struct {
	ID                 uint
	Email              string
	Nickname           string
	Role               models.Role
	VerificationStatus models.VerificationStatus
	CreatedAt          time.Time
}

// ProfileCoverage counts identities of one role and how many have a profile.
type ProfileCoverage struct {
	Role        models.Role
	Users       int64
	WithProfile int64
}

// FindOrphanedProfiles lists non-admin users that have no Member or Cast
// row for their role, ordered by role then id.
func FindOrphanedProfiles(ctx context.Context, db *gorm.DB) ([]OrphanedUser, error) {
	var out []OrphanedUser
	err := db.WithContext(ctx).Model(&models.User{}).
		Select("users.id, users.email, users.nickname, users.role, users.verification_status, users.created_at").
		Joins("LEFT JOIN members ON members.user_id = users.id").
		Joins("LEFT JOIN casts ON casts.user_id = users.id").
		Where("(users.role = ? AND members.id IS NULL) OR (users.role = ? AND casts.id IS NULL)",
			models.RoleMember, models.RoleCast).
		Order("users.role ASC, users.id ASC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CountProfileCoverage reports MEMBER and CAST totals against profile rows.
func CountProfileCoverage(ctx context.Context, db *gorm.DB) ([]ProfileCoverage, error) {
	db = db.WithContext(ctx)
	out := []ProfileCoverage{{Role: models.RoleMember}, {Role: models.RoleCast}}
	for i := range out {
		table := "members"
		if out[i].Role == models.RoleCast {
			table = "casts"
		}
		if err := db.Model(&models.User{}).Where("role = ?", out[i].Role).Count(&out[i].Users).Error; err != nil {
			return nil, err
		}
		if err := db.Model(&models.User{}).
			Joins("JOIN "+table+" ON "+table+".user_id = users.id").
			Where("users.role = ?", out[i].Role).
			Count(&out[i].WithProfile).Error; err != nil {
			return nil, err
		}
	}
	return out, nil
}
