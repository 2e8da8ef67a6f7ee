package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luneclub/lune/backend/internal/models"
	"github.com/luneclub/lune/backend/pkg/response"
)

func TestSystemConfigService_TypedGetters(t *testing.T) {
	svc := NewSystemConfigService(openTestDB(t))

	assert.Equal(t, 30, svc.GetInt(models.ConfigLogRetentionDays, 7))
	assert.True(t, svc.GetBool(models.ConfigRegistrationOpen, false))
	assert.Equal(t, 5, svc.GetInt("missing_key", 5))

	require.NoError(t, svc.Set(models.ConfigAccessTokenHours, "abc"))
	assert.Equal(t, 12, svc.GetInt(models.ConfigAccessTokenHours, 12), "malformed values fall back")
	require.NoError(t, svc.Set(models.ConfigAccessTokenHours, "-3"))
	assert.Equal(t, 12, svc.GetInt(models.ConfigAccessTokenHours, 12), "non-positive values fall back")
}

func TestSystemConfigService_SetCreatesAndUpdates(t *testing.T) {
	svc := NewSystemConfigService(openTestDB(t))

	require.NoError(t, svc.Set("custom", "1"))
	require.NoError(t, svc.Set("custom", "2"))
	v, err := svc.Get("custom")
	require.NoError(t, err)
	assert.Equal(t, "2", v)
}

func TestSystemConfigService_UpdateRejectsUnknownKeys(t *testing.T) {
	svc := NewSystemConfigService(openTestDB(t))

	err := svc.Update(&UpdateSystemConfigRequest{Values: map[string]string{
		models.ConfigRefreshTokenDays: "30",
		"refresh_token_dayz":          "30",
	}})
	assert.True(t, errors.Is(err, response.ErrValidation))
	assert.Equal(t, 14, svc.GetInt(models.ConfigRefreshTokenDays, 0), "nothing is written on failure")

	require.NoError(t, svc.Update(&UpdateSystemConfigRequest{Values: map[string]string{
		models.ConfigRefreshTokenDays: "30",
	}}))
	assert.Equal(t, 30, svc.GetInt(models.ConfigRefreshTokenDays, 0))

	auth, err := svc.GetByGroup("auth")
	require.NoError(t, err)
	assert.Len(t, auth, 3)
}
