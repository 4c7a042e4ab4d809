package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shaoyi1998/blog-backend/internal/common"
	"github.com/shaoyi1998/blog-backend/internal/domain"
	"github.com/shaoyi1998/blog-backend/internal/middleware"
	"github.com/shaoyi1998/blog-backend/internal/service"
)

// SettingHandler exposes the runtime media settings to operators
type SettingHandler struct {
	service service.SettingService
}

// NewSettingHandler creates a new SettingHandler
func NewSettingHandler(service service.SettingService) *SettingHandler {
	return &SettingHandler{service: service}
}

// GetMediaSettings handles GET /api/v1/admin/settings/media
func (h *SettingHandler) GetMediaSettings(c *gin.Context) {
	settings, err := h.service.GetMediaSettings(c.Request.Context())
	if err != nil {
		common.V2Fail(c, "failed to load settings", err)
		return
	}
	common.V2Success(c, settings)
}

// UpdateMediaSettings handles PUT /api/v1/admin/settings/media
func (h *SettingHandler) UpdateMediaSettings(c *gin.Context) {
	var req domain.UpdateMediaSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.V2ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	settings, err := h.service.UpdateMediaSettings(c.Request.Context(), &req, middleware.GetUserID(c))
	if err != nil {
		common.V2Fail(c, "failed to update settings", err)
		return
	}
	common.V2Success(c, settings)
}
