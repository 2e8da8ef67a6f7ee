package models

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/luneclub/lune/backend/internal/config"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := Open(&config.DatabaseConfig{Driver: "sqlite", DSN: dsn}, logger.Silent)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(&config.DatabaseConfig{Driver: "oracle"}, logger.Silent)
	assert.Error(t, err)
}

func TestMeetingRequest_ActiveKeyUnique(t *testing.T) {
	db := openTestDB(t)
	now := time.Now()

	require.NoError(t, db.Create(NewMeetingRequest(1, 2, now)).Error)

	err := db.Create(NewMeetingRequest(1, 2, now)).Error
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "expected duplicate key, got %v", err)

	// other pairs are unaffected
	require.NoError(t, db.Create(NewMeetingRequest(1, 3, now)).Error)
}

func TestMeetingRequest_TerminalReleasesKey(t *testing.T) {
	db := openTestDB(t)
	now := time.Now()

	first := NewMeetingRequest(5, 6, now)
	require.NoError(t, db.Create(first).Error)
	require.NoError(t, first.TransitionTo(MeetingCancelled, now))
	require.NoError(t, db.Save(first).Error)

	// multiple terminal rows for the same pair may coexist with one open row
	second := NewMeetingRequest(5, 6, now)
	require.NoError(t, db.Create(second).Error)
	require.NoError(t, second.TransitionTo(MeetingCancelled, now))
	require.NoError(t, db.Save(second).Error)

	require.NoError(t, db.Create(NewMeetingRequest(5, 6, now)).Error)

	var count int64
	db.Model(&MeetingRequest{}).Where("member_id = ? AND cast_id = ?", 5, 6).Count(&count)
	assert.Equal(t, int64(3), count)
}

func TestBookmark_PairUnique(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.Create(&Bookmark{MemberID: 1, CastID: 1}).Error)
	err := db.Create(&Bookmark{MemberID: 1, CastID: 1}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestAdminActionLog_AppendOnly(t *testing.T) {
	db := openTestDB(t)

	entry := &AdminActionLog{AdminID: 1, ActionType: ActionApproveMember, Notes: "approved"}
	require.NoError(t, db.Create(entry).Error)

	err := db.Model(entry).Update("notes", "rewritten").Error
	assert.ErrorIs(t, err, ErrAppendOnly)

	err = db.Delete(entry).Error
	assert.ErrorIs(t, err, ErrAppendOnly)

	var stored AdminActionLog
	require.NoError(t, db.First(&stored, entry.ID).Error)
	assert.Equal(t, "approved", stored.Notes)
}

func TestSeedSystemConfigs_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, SeedSystemConfigs(db))
	require.NoError(t, SeedSystemConfigs(db))

	var count int64
	db.Model(&SystemConfig{}).Where("config_key = ?", ConfigLogRetentionDays).Count(&count)
	assert.Equal(t, int64(1), count)
}
