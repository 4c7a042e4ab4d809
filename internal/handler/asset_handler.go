package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shaoyi1998/blog-backend/internal/common"
	"github.com/shaoyi1998/blog-backend/internal/service"
	"github.com/shaoyi1998/blog-backend/pkg/ginutil"
)

// AssetHandler serves article image listings and storage maintenance
type AssetHandler struct {
	service service.AssetService
}

// NewAssetHandler creates a new AssetHandler
func NewAssetHandler(service service.AssetService) *AssetHandler {
	return &AssetHandler{service: service}
}

// ListImages handles GET /api/v1/images?article_id=
// @Summary List the stored images of an article
// @Tags images
// @Produce json
// @Param article_id query int true "article ID"
// @Success 200 {object} common.V2Response{data=[]domain.AssetResponse}
// @Router /images [get]
func (h *AssetHandler) ListImages(c *gin.Context) {
	articleID, err := ginutil.QueryUint64(c, "article_id")
	if err != nil {
		common.V2ErrorResponse(c, http.StatusBadRequest, "article_id is required", err)
		return
	}

	images, err := h.service.ListImages(c.Request.Context(), articleID)
	if err != nil {
		common.V2Fail(c, "failed to list images", err)
		return
	}
	common.V2Success(c, images)
}

// Reclaim handles POST /api/v1/admin/assets/reclaim
// @Summary Delete stored files no asset record references
// @Tags admin
// @Produce json
// @Success 200 {object} common.V2Response{data=domain.ReclaimResponse}
// @Failure 409 {object} common.V2Response
// @Security BearerAuth
// @Router /admin/assets/reclaim [post]
func (h *AssetHandler) Reclaim(c *gin.Context) {
	res, err := h.service.Reclaim(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		common.V2Fail(c, "reclaim failed", err)
		return
	}
	common.V2Success(c, res)
}

// Audit handles GET /api/v1/admin/assets/audit
// @Summary Report mismatches between asset records and stored files
// @Tags admin
// @Produce json
// @Success 200 {object} common.V2Response{data=[]domain.ConsistencyIssue}
// @Security BearerAuth
// @Router /admin/assets/audit [get]
func (h *AssetHandler) Audit(c *gin.Context) {
	issues, err := h.service.Audit(c.Request.Context())
	if err != nil {
		common.V2Fail(c, "audit failed", err)
		return
	}
	common.V2Success(c, issues)
}
