package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luneclub/lune/backend/internal/models"
	"github.com/luneclub/lune/backend/pkg/response"
)

func strPtr(s string) *string { return &s }

func confirmReq(at time.Time, location string) *ConfirmMeetingRequest {
	return &ConfirmMeetingRequest{ScheduledDate: strPtr(at.Format(time.RFC3339)), Location: strPtr(location)}
}

func TestMeetingRequest_CreatePending(t *testing.T) {
	db := openTestDB(t)
	svc := NewMeetingRequestService(db)
	actor, member := seedMember(t, db, "Ken", models.TierStandard)
	cast := seedCast(t, db, castSeed{Nickname: "Aiko"})

	req, err := svc.Create(context.Background(), actor, cast.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MeetingPending, req.Status)
	assert.Equal(t, member.ID, req.MemberID)
	assert.Equal(t, cast.ID, req.CastID)
	assert.Nil(t, req.ScheduledDate)
	assert.Nil(t, req.Location)
	assert.False(t, req.CreatedAt.IsZero())
}

func TestMeetingRequest_CreateGuards(t *testing.T) {
	db := openTestDB(t)
	svc := NewMeetingRequestService(db)
	ctx := context.Background()
	admin := seedAdmin(t, db)
	standard, _ := seedMember(t, db, "Ken", models.TierStandard)
	gold, _ := seedMember(t, db, "Sora", models.TierGold)
	highClass := seedCast(t, db, castSeed{Nickname: "Mei", Tier: models.CastTierHighClass})
	inactive := seedCast(t, db, castSeed{Nickname: "Yui", Inactive: true})

	tests := []struct {
		name   string
		actor  Actor
		castID uint
		want   error
	}{
		{"anonymous", Actor{}, highClass.ID, response.ErrUnauthorized},
		{"admin cannot request", admin, highClass.ID, response.ErrUnauthorized},
		{"missing cast id", standard, 0, response.ErrValidation},
		{"unknown cast", standard, 9999, response.ErrNotFound},
		{"inactive cast", standard, inactive.ID, response.ErrNotFound},
		{"tier too low", standard, highClass.ID, response.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.actor, tt.castID)
			assert.True(t, errors.Is(err, tt.want), "expected %v, got %v", tt.want, err)
		})
	}

	_, err := svc.Create(ctx, gold, highClass.ID)
	assert.NoError(t, err, "GOLD may request a HIGH_CLASS cast")

	var n int64
	db.Model(&models.MeetingRequest{}).Count(&n)
	assert.Equal(t, int64(1), n, "failed creates must not leave rows behind")
}

func TestMeetingRequest_OneOpenPerPair(t *testing.T) {
	db := openTestDB(t)
	svc := NewMeetingRequestService(db)
	ctx := context.Background()
	admin := seedAdmin(t, db)
	actor, _ := seedMember(t, db, "Ken", models.TierStandard)
	cast := seedCast(t, db, castSeed{Nickname: "Aiko"})
	other := seedCast(t, db, castSeed{Nickname: "Rin"})

	first, err := svc.Create(ctx, actor, cast.ID)
	require.NoError(t, err)

	_, err = svc.Create(ctx, actor, cast.ID)
	assert.True(t, errors.Is(err, response.ErrConflict), "got %v", err)

	_, err = svc.Confirm(ctx, admin, first.ID, confirmReq(time.Now().Add(48*time.Hour), "Ginza"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, actor, cast.ID)
	assert.True(t, errors.Is(err, response.ErrConflict), "confirmed request still blocks, got %v", err)

	_, err = svc.Create(ctx, actor, other.ID)
	assert.NoError(t, err, "a different cast is independent")

	_, err = svc.Cancel(ctx, admin, first.ID, nil)
	require.NoError(t, err)
	_, err = svc.Create(ctx, actor, cast.ID)
	assert.NoError(t, err, "a cancelled request frees the pair")
}

func TestMeetingRequest_TierChangeAffectsLaterCreates(t *testing.T) {
	db := openTestDB(t)
	svc := NewMeetingRequestService(db)
	tiers := NewTierService(db)
	ctx := context.Background()
	admin := seedAdmin(t, db)
	actor, member := seedMember(t, db, "Ken", models.TierStandard)
	cast := seedCast(t, db, castSeed{Nickname: "Mei", Tier: models.CastTierHighClass})

	_, err := svc.Create(ctx, actor, cast.ID)
	require.True(t, errors.Is(err, response.ErrForbidden))

	_, err = tiers.Upgrade(ctx, admin, member.ID)
	require.NoError(t, err)

	_, err = svc.Create(ctx, actor, cast.ID)
	assert.NoError(t, err)
}

func TestMeetingRequest_Lifecycle(t *testing.T) {
	db := openTestDB(t)
	svc := NewMeetingRequestService(db)
	ctx := context.Background()
	admin := seedAdmin(t, db)
	actor, _ := seedMember(t, db, "Ken", models.TierStandard)
	cast := seedCast(t, db, castSeed{Nickname: "Aiko"})

	req, err := svc.Create(ctx, actor, cast.ID)
	require.NoError(t, err)

	when := time.Date(2026, 11, 3, 19, 0, 0, 0, time.UTC)
	confirm := confirmReq(when, "Hotel Lobby")
	confirm.AdminNotes = strPtr("bring flowers")
	confirmed, err := svc.Confirm(ctx, admin, req.ID, confirm)
	require.NoError(t, err)
	assert.Equal(t, models.MeetingConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.ScheduledDate)
	assert.True(t, when.Equal(*confirmed.ScheduledDate))
	assert.Equal(t, "Hotel Lobby", *confirmed.Location)
	assert.Equal(t, "bring flowers", *confirmed.AdminNotes)
	assert.NotNil(t, confirmed.ConfirmedAt)

	_, err = svc.Confirm(ctx, admin, req.ID, confirmReq(when, "Elsewhere"))
	assert.True(t, errors.Is(err, response.ErrInvalidState), "confirming twice, got %v", err)

	completed, err := svc.Complete(ctx, admin, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MeetingCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)

	_, err = svc.Cancel(ctx, admin, req.ID, nil)
	assert.True(t, errors.Is(err, response.ErrInvalidState), "completed is terminal, got %v", err)

	var stored models.MeetingRequest
	require.NoError(t, db.First(&stored, req.ID).Error)
	assert.Equal(t, models.MeetingCompleted, stored.Status)
	assert.Nil(t, stored.ActiveKey)
	assert.Equal(t, "Hotel Lobby", *stored.Location)

	assert.Equal(t, int64(1), countAdminLogs(t, db, models.ActionConfirmMeeting))
	assert.Equal(t, int64(1), countAdminLogs(t, db, models.ActionCompleteMeeting))
	assert.Equal(t, int64(0), countAdminLogs(t, db, models.ActionCancelMeeting))
}

func TestMeetingRequest_CompleteRequiresConfirmed(t *testing.T) {
	db := openTestDB(t)
	svc := NewMeetingRequestService(db)
	ctx := context.Background()
	admin := seedAdmin(t, db)
	actor, _ := seedMember(t, db, "Ken", models.TierStandard)
	cast := seedCast(t, db, castSeed{Nickname: "Aiko"})

	req, err := svc.Create(ctx, actor, cast.ID)
	require.NoError(t, err)

	_, err = svc.Complete(ctx, admin, req.ID)
	assert.True(t, errors.Is(err, response.ErrInvalidState), "got %v", err)

	var stored models.MeetingRequest
	require.NoError(t, db.First(&stored, req.ID).Error)
	assert.Equal(t, models.MeetingPending, stored.Status, "failed transition must not change state")
	assert.Equal(t, int64(0), countAdminLogs(t, db, models.ActionCompleteMeeting))
}

func TestMeetingRequest_ConfirmValidation(t *testing.T) {
	db := openTestDB(t)
	svc := NewMeetingRequestService(db)
	ctx := context.Background()
	admin := seedAdmin(t, db)
	actor, _ := seedMember(t, db, "Ken", models.TierStandard)
	cast := seedCast(t, db, castSeed{Nickname: "Aiko"})
	req, err := svc.Create(ctx, actor, cast.ID)
	require.NoError(t, err)

	when := time.Now().Add(24 * time.Hour)
	_, err = svc.Confirm(ctx, admin, req.ID, &ConfirmMeetingRequest{Location: strPtr("Ginza")})
	assert.True(t, errors.Is(err, response.ErrValidation))
	_, err = svc.Confirm(ctx, admin, req.ID, &ConfirmMeetingRequest{ScheduledDate: strPtr(when.Format(time.RFC3339)), Location: strPtr("  ")})
	assert.True(t, errors.Is(err, response.ErrValidation))
	_, err = svc.Confirm(ctx, admin, req.ID, &ConfirmMeetingRequest{ScheduledDate: strPtr("next tuesday"), Location: strPtr("Ginza")})
	assert.True(t, errors.Is(err, response.ErrValidation))
	_, err = svc.Confirm(ctx, admin, req.ID, &ConfirmMeetingRequest{ScheduledDate: strPtr("01/06/2025 10:00"), Location: strPtr("Ginza")})
	assert.True(t, errors.Is(err, response.ErrValidation))
	_, err = svc.Confirm(ctx, actor, req.ID, confirmReq(when, "Ginza"))
	assert.True(t, errors.Is(err, response.ErrUnauthorized), "members cannot confirm")
	_, err = svc.Confirm(ctx, admin, 9999, confirmReq(when, "Ginza"))
	assert.True(t, errors.Is(err, response.ErrNotFound))
}

func TestMeetingRequest_CancelKeepsNotesUnlessGiven(t *testing.T) {
	db := openTestDB(t)
	svc := NewMeetingRequestService(db)
	ctx := context.Background()
	admin := seedAdmin(t, db)
	actor, member := seedMember(t, db, "Ken", models.TierStandard)
	cast := seedCast(t, db, castSeed{Nickname: "Aiko"})
	other := seedCast(t, db, castSeed{Nickname: "Rin"})

	first, err := svc.Create(ctx, actor, cast.ID)
	require.NoError(t, err)
	confirm := confirmReq(time.Now().Add(time.Hour), "Ginza")
	confirm.AdminNotes = strPtr("original")
	_, err = svc.Confirm(ctx, admin, first.ID, confirm)
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, admin, first.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "original", *cancelled.AdminNotes)
	assert.NotNil(t, cancelled.CancelledAt)

	second, err := svc.Create(ctx, actor, other.ID)
	require.NoError(t, err)
	cancelled, err = svc.Cancel(ctx, admin, second.ID, strPtr("cast unavailable"))
	require.NoError(t, err)
	assert.Equal(t, "cast unavailable", *cancelled.AdminNotes)

	var entry models.AdminActionLog
	require.NoError(t, db.Where("action_type = ?", models.ActionCancelMeeting).Order("id DESC").First(&entry).Error)
	assert.Equal(t, admin.UserID, entry.AdminID)
	require.NotNil(t, entry.TargetUserID)
	assert.Equal(t, member.UserID, *entry.TargetUserID)
}

func TestMeetingRequest_ListForMember(t *testing.T) {
	db := openTestDB(t)
	svc := NewMeetingRequestService(db)
	ctx := context.Background()
	admin := seedAdmin(t, db)
	actor, _ := seedMember(t, db, "Ken", models.TierStandard)
	otherActor, _ := seedMember(t, db, "Taro", models.TierStandard)

	var casts []*models.Cast
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		casts = append(casts, seedCast(t, db, castSeed{Nickname: name}))
	}
	var ids []uint
	for _, c := range casts {
		r, err := svc.Create(ctx, actor, c.ID)
		require.NoError(t, err)
		ids = append(ids, r.ID)
	}
	_, err := svc.Create(ctx, otherActor, casts[0].ID)
	require.NoError(t, err)

	base := time.Date(2026, 12, 1, 18, 0, 0, 0, time.UTC)
	_, err = svc.Confirm(ctx, admin, ids[1], confirmReq(base.Add(48*time.Hour), "X"))
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, admin, ids[2], confirmReq(base, "Y"))
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, admin, ids[3], confirmReq(base, "Z"))
	require.NoError(t, err)
	_, err = svc.Complete(ctx, admin, ids[3])
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, admin, ids[4], nil)
	require.NoError(t, err)

	grouped, err := svc.ListForMember(ctx, actor)
	require.NoError(t, err)
	require.Len(t, grouped.Pending, 1)
	assert.Equal(t, ids[0], grouped.Pending[0].ID)
	require.Len(t, grouped.Upcoming, 2)
	assert.Equal(t, ids[2], grouped.Upcoming[0].ID, "soonest confirmed first")
	assert.Equal(t, ids[1], grouped.Upcoming[1].ID)
	require.Len(t, grouped.Completed, 1)
	require.Len(t, grouped.Cancelled, 1)
	require.NotNil(t, grouped.Pending[0].Cast)
	assert.Equal(t, "A", grouped.Pending[0].Cast.DisplayName())

	_, err = svc.ListForMember(ctx, admin)
	assert.True(t, errors.Is(err, response.ErrUnauthorized))
}

func TestGroupMeetings_Ordering(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	at := func(h int) *time.Time { v := t0.Add(time.Duration(h) * time.Hour); return &v }

	all := []models.MeetingRequest{
		{ID: 1, Status: models.MeetingPending, CreatedAt: t0},
		{ID: 2, Status: models.MeetingPending, CreatedAt: t0.Add(time.Hour)},
		{ID: 3, Status: models.MeetingCompleted, ScheduledDate: at(1)},
		{ID: 4, Status: models.MeetingCompleted, ScheduledDate: at(5)},
		{ID: 5, Status: models.MeetingConfirmed, ScheduledDate: at(9)},
		{ID: 6, Status: models.MeetingConfirmed, ScheduledDate: at(2)},
		{ID: 7, Status: models.MeetingCancelled, CreatedAt: t0},
		{ID: 8, Status: models.MeetingCancelled, CreatedAt: t0.Add(2 * time.Hour)},
	}
	g := GroupMeetings(all)

	ids := func(list []models.MeetingRequest) []uint {
		out := []uint{}
		for _, m := range list {
			out = append(out, m.ID)
		}
		return out
	}
	assert.Equal(t, []uint{2, 1}, ids(g.Pending))
	assert.Equal(t, []uint{6, 5}, ids(g.Upcoming))
	assert.Equal(t, []uint{4, 3}, ids(g.Completed))
	assert.Equal(t, []uint{8, 7}, ids(g.Cancelled))
}

func TestMeetingRequest_AdminListAndGet(t *testing.T) {
	db := openTestDB(t)
	svc := NewMeetingRequestService(db)
	ctx := context.Background()
	admin := seedAdmin(t, db)
	actor, _ := seedMember(t, db, "Ken", models.TierStandard)
	stranger, _ := seedMember(t, db, "Taro", models.TierStandard)
	a := seedCast(t, db, castSeed{Nickname: "A"})
	b := seedCast(t, db, castSeed{Nickname: "B"})

	first, err := svc.Create(ctx, actor, a.ID)
	require.NoError(t, err)
	_, err = svc.Create(ctx, actor, b.ID)
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, admin, first.ID, nil)
	require.NoError(t, err)

	page, err := svc.List(ctx, admin, &MeetingRequestListRequest{Status: models.MeetingPending})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, b.ID, page.Items[0].CastID)

	second, err := svc.List(ctx, admin, &MeetingRequestListRequest{Page: Page{Page: 2, PageSize: 1}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Total)
	assert.Equal(t, 2, second.Page)
	assert.Equal(t, 1, second.PageSize)
	require.Len(t, second.Items, 1)

	_, err = svc.List(ctx, actor, &MeetingRequestListRequest{})
	assert.True(t, errors.Is(err, response.ErrUnauthorized))

	got, err := svc.Get(ctx, actor, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MeetingCancelled, got.Status)

	_, err = svc.Get(ctx, stranger, first.ID)
	assert.True(t, errors.Is(err, response.ErrNotFound), "members only see their own requests")
}

func TestParseScheduledDate(t *testing.T) {
	want := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for _, raw := range []string{
		"2025-06-01T10:00",
		"2025-06-01T10:00:00",
		"2025-06-01T10:00:00Z",
		"2025-06-01T19:00:00+09:00",
		" 2025-06-01T10:00 ",
	} {
		got, err := parseScheduledDate(raw)
		require.NoError(t, err, raw)
		assert.True(t, want.Equal(got), "%s parsed as %v", raw, got)
	}

	for _, raw := range []string{"2025-06-01", "10:00", "2025-13-01T10:00", "tomorrow"} {
		_, err := parseScheduledDate(raw)
		assert.True(t, errors.Is(err, response.ErrValidation), raw)
	}
}

func TestMeetingRequest_ConfirmWithDatetimeLocal(t *testing.T) {
	db := openTestDB(t)
	svc := NewMeetingRequestService(db)
	ctx := context.Background()
	admin := seedAdmin(t, db)
	actor, _ := seedMember(t, db, "Ken", models.TierStandard)
	cast := seedCast(t, db, castSeed{Nickname: "Aiko"})
	req, err := svc.Create(ctx, actor, cast.ID)
	require.NoError(t, err)

	confirmed, err := svc.Confirm(ctx, admin, req.ID, &ConfirmMeetingRequest{
		ScheduledDate: strPtr("2025-06-01T10:00"),
		Location:      strPtr("Suite 4"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.MeetingConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.ScheduledDate)
	assert.True(t, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC).Equal(*confirmed.ScheduledDate))
	assert.Equal(t, "Suite 4", *confirmed.Location)
	assert.NotNil(t, confirmed.ConfirmedAt)
	assert.Equal(t, int64(1), countAdminLogs(t, db, models.ActionConfirmMeeting))
}

func TestMeetingRequest_LegacyTierGate(t *testing.T) {
	db := openTestDB(t)
	svc := NewMeetingRequestService(db)
	ctx := context.Background()
	basic, _ := seedMember(t, db, "Ken", models.MemberTier("BASIC"))
	premium, _ := seedMember(t, db, "Taro", models.MemberTier("PREMIUM"))
	odd, _ := seedMember(t, db, "Jun", models.MemberTier("PLATINUM"))
	standard := seedCast(t, db, castSeed{Nickname: "Aiko"})
	highClass := seedCast(t, db, castSeed{Nickname: "Mei", Tier: models.CastTierHighClass})

	_, err := svc.Create(ctx, basic, standard.ID)
	assert.NoError(t, err, "BASIC counts as STANDARD")
	_, err = svc.Create(ctx, basic, highClass.ID)
	assert.True(t, errors.Is(err, response.ErrForbidden), "got %v", err)
	_, err = svc.Create(ctx, premium, highClass.ID)
	assert.NoError(t, err, "PREMIUM counts as GOLD")
	_, err = svc.Create(ctx, odd, standard.ID)
	assert.True(t, errors.Is(err, response.ErrInvalidState), "got %v", err)
}
