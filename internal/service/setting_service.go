package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shaoyi1998/blog-backend/internal/common"
	"github.com/shaoyi1998/blog-backend/internal/domain"
	"github.com/shaoyi1998/blog-backend/internal/media"
	"github.com/shaoyi1998/blog-backend/internal/repository"
	pkglogger "github.com/shaoyi1998/blog-backend/pkg/logger"
)

// SettingService runtime media settings. Values are read from the settings
// table on every call so changes apply to the next write without a restart.
type SettingService interface {
	MediaPolicy(ctx context.Context) (media.Policy, error)
	GetMediaSettings(ctx context.Context) (*domain.MediaSettings, error)
	UpdateMediaSettings(ctx context.Context, req *domain.UpdateMediaSettingsRequest, updatedBy string) (*domain.MediaSettings, error)
}

type settingService struct {
	repo     *repository.SettingRepository
	defaults domain.MediaSettings
}

// NewSettingService creates a SettingService; defaults apply to unset keys
func NewSettingService(repo *repository.SettingRepository, defaults domain.MediaSettings) SettingService {
	defaults.CompressQuality = media.ClampQuality(defaults.CompressQuality)
	return &settingService{repo: repo, defaults: defaults}
}

// GetMediaSettings returns the effective media settings
func (s *settingService) GetMediaSettings(ctx context.Context) (*domain.MediaSettings, error) {
	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	out := s.defaults
	for _, row := range rows {
		switch row.Key {
		case domain.SettingCompressQuality:
			q, err := strconv.Atoi(row.Value)
			if err != nil {
				pkglogger.GetLogger().Warn().Str("value", row.Value).Msg("ignoring malformed compress_quality")
				continue
			}
			out.CompressQuality = media.ClampQuality(q)
		case domain.SettingSaveAsFile:
			b, err := strconv.ParseBool(row.Value)
			if err != nil {
				pkglogger.GetLogger().Warn().Str("value", row.Value).Msg("ignoring malformed save_as_file")
				continue
			}
			out.SaveAsFile = b
		}
	}
	return &out, nil
}

// MediaPolicy returns the policy for one rewrite
func (s *settingService) MediaPolicy(ctx context.Context) (media.Policy, error) {
	settings, err := s.GetMediaSettings(ctx)
	if err != nil {
		return media.Policy{}, err
	}
	return media.Policy{SaveAsFile: settings.SaveAsFile, Quality: settings.CompressQuality}, nil
}

// UpdateMediaSettings stores the provided fields and returns the new state
func (s *settingService) UpdateMediaSettings(ctx context.Context, req *domain.UpdateMediaSettingsRequest, updatedBy string) (*domain.MediaSettings, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}

	if req.CompressQuality != nil {
		if err := s.repo.Set(ctx, domain.SettingCompressQuality, strconv.Itoa(*req.CompressQuality), updatedBy); err != nil {
			return nil, err
		}
	}
	if req.SaveAsFile != nil {
		if err := s.repo.Set(ctx, domain.SettingSaveAsFile, strconv.FormatBool(*req.SaveAsFile), updatedBy); err != nil {
			return nil, err
		}
	}

	pkglogger.GetLogger().Info().Str("updated_by", updatedBy).Msg("media settings updated")
	return s.GetMediaSettings(ctx)
}
