package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/luneclub/lune/backend/internal/config"
	"github.com/luneclub/lune/backend/internal/models"
)

// openTestDB returns a migrated, seeded in-memory database private to t.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := models.Open(&config.DatabaseConfig{Driver: "sqlite", DSN: dsn}, logger.Silent)
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	require.NoError(t, models.SeedSystemConfigs(db))

	InitSystemLogger(db)
	t.Cleanup(func() {
		InitSystemLogger(nil)
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedAdmin(t *testing.T, db *gorm.DB) Actor {
	t.Helper()
	user := models.User{
		Email:              uuid.NewString() + "@staff.test",
		Nickname:           "Staff",
		Role:               models.RoleAdmin,
		VerificationStatus: models.VerificationApproved,
		IsActive:           true,
	}
	require.NoError(t, db.Create(&user).Error)
	return Actor{UserID: user.ID, Role: models.RoleAdmin}
}

func seedMember(t *testing.T, db *gorm.DB, nickname string, tier models.MemberTier) (Actor, *models.Member) {
	t.Helper()
	user := models.User{
		Email:              uuid.NewString() + "@member.test",
		Nickname:           nickname,
		Role:               models.RoleMember,
		VerificationStatus: models.VerificationPending,
		IsActive:           true,
	}
	require.NoError(t, db.Create(&user).Error)
	member := models.Member{
		UserID:    user.ID,
		Tier:      tier,
		IsActive:  true,
		Languages: datatypes.NewJSONSlice([]string{"en"}),
		Interests: datatypes.NewJSONSlice([]string{}),
		Hobbies:   datatypes.NewJSONSlice([]string{}),
	}
	require.NoError(t, db.Create(&member).Error)
	return Actor{UserID: user.ID, Role: models.RoleMember}, &member
}

type castSeed struct {
	Nickname  string
	Tier      models.CastTier
	Inactive  bool
	Featured  bool
	Age       int
	Location  string
	Languages []string
	Interests []string
}

func seedCast(t *testing.T, db *gorm.DB, in castSeed) *models.Cast {
	t.Helper()
	if in.Tier == "" {
		in.Tier = models.CastTierStandard
	}
	if in.Age == 0 {
		in.Age = 25
	}
	user := models.User{
		Email:              uuid.NewString() + "@cast.test",
		Nickname:           in.Nickname,
		Role:               models.RoleCast,
		VerificationStatus: models.VerificationApproved,
		IsActive:           true,
	}
	require.NoError(t, db.Create(&user).Error)
	cast := models.Cast{
		UserID:             user.ID,
		TierClassification: in.Tier,
		IsActive:           !in.Inactive,
		IsFeatured:         in.Featured,
		Age:                in.Age,
		Location:           in.Location,
		Languages:          datatypes.NewJSONSlice(nonNil(in.Languages)),
		Interests:          datatypes.NewJSONSlice(nonNil(in.Interests)),
		Hobbies:            datatypes.NewJSONSlice([]string{}),
		HolidayStyle:       datatypes.NewJSONSlice([]string{}),
	}
	require.NoError(t, db.Create(&cast).Error)
	cast.User = &user
	return &cast
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func countAdminLogs(t *testing.T, db *gorm.DB, actionType string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.AdminActionLog{}).Where("action_type = ?", actionType).Count(&n).Error)
	return n
}
