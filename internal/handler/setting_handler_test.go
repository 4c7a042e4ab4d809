package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shaoyi1998/blog-backend/internal/common"
	"github.com/shaoyi1998/blog-backend/internal/domain"
	"github.com/shaoyi1998/blog-backend/internal/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockSettingService struct {
	mock.Mock
}

func (m *mockSettingService) MediaPolicy(ctx context.Context) (media.Policy, error) {
	args := m.Called(ctx)
	return args.Get(0).(media.Policy), args.Error(1)
}

func (m *mockSettingService) GetMediaSettings(ctx context.Context) (*domain.MediaSettings, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*domain.MediaSettings)
	return s, args.Error(1)
}

func (m *mockSettingService) UpdateMediaSettings(ctx context.Context, req *domain.UpdateMediaSettingsRequest, updatedBy string) (*domain.MediaSettings, error) {
	args := m.Called(ctx, req, updatedBy)
	s, _ := args.Get(0).(*domain.MediaSettings)
	return s, args.Error(1)
}

func TestSettingHandler(t *testing.T) {
	svc := new(mockSettingService)
	svc.On("GetMediaSettings", mock.Anything).Return(&domain.MediaSettings{CompressQuality: 80, SaveAsFile: true}, nil)
	q := 101
	svc.On("UpdateMediaSettings", mock.Anything, &domain.UpdateMediaSettingsRequest{CompressQuality: &q}, "root").
		Return(nil, common.ErrInvalidInput)

	h := NewSettingHandler(svc)
	r := gin.New()
	r.GET("/settings/media", h.GetMediaSettings)
	r.PUT("/settings/media", asUser("root"), h.UpdateMediaSettings)

	w := do(r, http.MethodGet, "/settings/media", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"compress_quality":80`)

	w = do(r, http.MethodPut, "/settings/media", map[string]int{"compress_quality": 101})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}
