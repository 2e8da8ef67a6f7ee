package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luneclub/lune/backend/internal/models"
	"github.com/luneclub/lune/backend/pkg/response"
)

func TestCastAdmin_ApproveActivates(t *testing.T) {
	db := openTestDB(t)
	svc := NewCastAdminService(db)
	ctx := context.Background()
	admin := seedAdmin(t, db)
	cast := seedCast(t, db, castSeed{Nickname: "Aiko", Inactive: true})
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", cast.UserID).
		Update("verification_status", models.VerificationPending).Error)

	got, err := svc.Approve(ctx, admin, cast.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.Equal(t, models.VerificationApproved, got.User.VerificationStatus)

	_, err = svc.Approve(ctx, admin, cast.ID)
	assert.True(t, errors.Is(err, response.ErrInvalidState))
	assert.Equal(t, int64(1), countAdminLogs(t, db, models.ActionApproveCast))
}

func TestCastAdmin_DeactivateHidesFromDirectory(t *testing.T) {
	db := openTestDB(t)
	svc := NewCastAdminService(db)
	dir := NewDirectoryService(db)
	ctx := context.Background()
	admin := seedAdmin(t, db)
	actor, _ := seedMember(t, db, "Ken", models.TierStandard)
	cast := seedCast(t, db, castSeed{Nickname: "Aiko"})

	_, err := svc.Deactivate(ctx, admin, cast.ID)
	require.NoError(t, err)

	result, err := dir.Browse(ctx, actor, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Casts)

	_, err = NewMeetingRequestService(db).Create(ctx, actor, cast.ID)
	assert.True(t, errors.Is(err, response.ErrNotFound))

	_, err = svc.Deactivate(ctx, admin, cast.ID)
	assert.True(t, errors.Is(err, response.ErrInvalidState))
}

func TestCastAdmin_FeatureAndClassify(t *testing.T) {
	db := openTestDB(t)
	svc := NewCastAdminService(db)
	ctx := context.Background()
	admin := seedAdmin(t, db)
	cast := seedCast(t, db, castSeed{Nickname: "Aiko"})

	got, err := svc.ToggleFeatured(ctx, admin, cast.ID)
	require.NoError(t, err)
	assert.True(t, got.IsFeatured)

	got, err = svc.SetTierClassification(ctx, admin, cast.ID, models.CastTierHighClass)
	require.NoError(t, err)
	assert.Equal(t, models.CastTierHighClass, got.TierClassification)

	_, err = svc.SetTierClassification(ctx, admin, cast.ID, models.CastTierHighClass)
	assert.True(t, errors.Is(err, response.ErrInvalidState))
	_, err = svc.SetTierClassification(ctx, admin, cast.ID, "PLATINUM")
	assert.True(t, errors.Is(err, response.ErrValidation))

	var entry models.AdminActionLog
	require.NoError(t, db.Where("action_type = ?", models.ActionClassifyCast).First(&entry).Error)
	assert.Contains(t, entry.Notes, "from STANDARD to HIGH_CLASS")
}

func TestCastAdmin_ListAndGuards(t *testing.T) {
	db := openTestDB(t)
	svc := NewCastAdminService(db)
	ctx := context.Background()
	admin := seedAdmin(t, db)
	actor, _ := seedMember(t, db, "Ken", models.TierStandard)
	seedCast(t, db, castSeed{Nickname: "Aiko"})
	seedCast(t, db, castSeed{Nickname: "Mei", Inactive: true})

	page, err := svc.List(ctx, admin, &CastListRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	page, err = svc.List(ctx, admin, &CastListRequest{Status: "inactive"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Mei", page.Items[0].DisplayName())

	_, err = svc.List(ctx, actor, &CastListRequest{})
	assert.True(t, errors.Is(err, response.ErrUnauthorized))
	_, err = svc.ToggleFeatured(ctx, admin, 999)
	assert.True(t, errors.Is(err, response.ErrNotFound))
}
