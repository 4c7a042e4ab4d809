package service

import (
	"context"
	"testing"

	"github.com/shaoyi1998/blog-backend/internal/common"
	"github.com/shaoyi1998/blog-backend/internal/domain"
	"github.com/shaoyi1998/blog-backend/internal/media"
	"github.com/shaoyi1998/blog-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaPolicy_Defaults(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSettingService(repository.NewSettingRepository(db), domain.MediaSettings{CompressQuality: 5, SaveAsFile: true})

	policy, err := svc.MediaPolicy(context.Background())
	require.NoError(t, err)
	// defaults are clamped too
	assert.Equal(t, media.Policy{SaveAsFile: true, Quality: media.MinQuality}, policy)
}

func TestMediaPolicy_ReadPerCall(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewSettingRepository(db)
	svc := NewSettingService(repo, domain.MediaSettings{CompressQuality: 80, SaveAsFile: true})
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, domain.SettingCompressQuality, "55", "root"))
	policy, err := svc.MediaPolicy(ctx)
	require.NoError(t, err)
	assert.Equal(t, 55, policy.Quality)

	// a later change is visible without rebuilding the service
	require.NoError(t, repo.Set(ctx, domain.SettingCompressQuality, "90", "root"))
	require.NoError(t, repo.Set(ctx, domain.SettingSaveAsFile, "false", "root"))
	policy, err = svc.MediaPolicy(ctx)
	require.NoError(t, err)
	assert.Equal(t, media.Policy{SaveAsFile: false, Quality: 90}, policy)
}

func TestMediaPolicy_IgnoresMalformedValues(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewSettingRepository(db)
	svc := NewSettingService(repo, domain.MediaSettings{CompressQuality: 70, SaveAsFile: true})
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, domain.SettingCompressQuality, "high", "root"))
	require.NoError(t, repo.Set(ctx, domain.SettingSaveAsFile, "maybe", "root"))

	policy, err := svc.MediaPolicy(ctx)
	require.NoError(t, err)
	assert.Equal(t, media.Policy{SaveAsFile: true, Quality: 70}, policy)
}

func TestUpdateMediaSettings(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSettingService(repository.NewSettingRepository(db), domain.MediaSettings{CompressQuality: 80, SaveAsFile: true})
	ctx := context.Background()

	q := 40
	got, err := svc.UpdateMediaSettings(ctx, &domain.UpdateMediaSettingsRequest{CompressQuality: &q}, "root")
	require.NoError(t, err)
	assert.Equal(t, &domain.MediaSettings{CompressQuality: 40, SaveAsFile: true}, got)

	bad := 101
	_, err = svc.UpdateMediaSettings(ctx, &domain.UpdateMediaSettingsRequest{CompressQuality: &bad}, "root")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
