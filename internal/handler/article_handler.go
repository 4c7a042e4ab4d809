package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shaoyi1998/blog-backend/internal/common"
	"github.com/shaoyi1998/blog-backend/internal/domain"
	"github.com/shaoyi1998/blog-backend/internal/middleware"
	"github.com/shaoyi1998/blog-backend/internal/service"
	"github.com/shaoyi1998/blog-backend/pkg/ginutil"
)

// ArticleHandler handles article HTTP requests
type ArticleHandler struct {
	service service.ArticleService
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(service service.ArticleService) *ArticleHandler {
	return &ArticleHandler{service: service}
}

// ListArticles handles GET /api/v1/articles
// @Summary List articles
// @Tags articles
// @Produce json
// @Param category query string false "category filter"
// @Param page query int false "page (default 1)"
// @Param limit query int false "page size (default 20)"
// @Success 200 {object} common.V2Response{data=[]domain.ArticleResponse}
// @Router /articles [get]
func (h *ArticleHandler) ListArticles(c *gin.Context) {
	page := ginutil.QueryInt(c, "page", 1)
	limit := ginutil.QueryInt(c, "limit", 20)

	articles, meta, err := h.service.ListArticles(c.Request.Context(), c.Query("category"), page, limit)
	if err != nil {
		common.V2Fail(c, "failed to list articles", err)
		return
	}
	common.V2SuccessWithMeta(c, articles, meta)
}

// GetArticle handles GET /api/v1/articles/:id
// @Summary Get an article
// @Tags articles
// @Produce json
// @Param id path int true "article ID"
// @Success 200 {object} common.V2Response{data=domain.ArticleResponse}
// @Failure 404 {object} common.V2Response
// @Router /articles/{id} [get]
func (h *ArticleHandler) GetArticle(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.V2ErrorResponse(c, http.StatusBadRequest, "invalid article id", err)
		return
	}

	article, err := h.service.GetArticle(c.Request.Context(), id)
	if err != nil {
		common.V2Fail(c, "failed to get article", err)
		return
	}
	common.V2Success(c, article)
}

// CreateArticle handles POST /api/v1/articles
// Inline images in content are stored as files; images that could not be
// stored are listed in failures and kept inline.
// @Summary Create an article
// @Tags articles
// @Accept json
// @Produce json
// @Param request body domain.ArticleRequest true "article"
// @Success 201 {object} common.V2Response{data=domain.ArticleWriteResponse}
// @Failure 400 {object} common.V2Response
// @Failure 409 {object} common.V2Response
// @Security BearerAuth
// @Router /articles [post]
func (h *ArticleHandler) CreateArticle(c *gin.Context) {
	var req domain.ArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.V2ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	resp, err := h.service.CreateArticle(c.Request.Context(), &req, middleware.GetUserID(c))
	if err != nil {
		_ = c.Error(err)
		common.V2Fail(c, "failed to create article", err)
		return
	}
	common.V2Created(c, resp)
}

// UpdateArticle handles PUT /api/v1/articles/:id
// @Summary Update an article
// @Tags articles
// @Accept json
// @Produce json
// @Param id path int true "article ID"
// @Param request body domain.ArticleRequest true "article"
// @Success 200 {object} common.V2Response{data=domain.ArticleWriteResponse}
// @Failure 404 {object} common.V2Response
// @Failure 423 {object} common.V2Response
// @Security BearerAuth
// @Router /articles/{id} [put]
func (h *ArticleHandler) UpdateArticle(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.V2ErrorResponse(c, http.StatusBadRequest, "invalid article id", err)
		return
	}

	var req domain.ArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.V2ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	resp, err := h.service.UpdateArticle(c.Request.Context(), id, &req)
	if err != nil {
		_ = c.Error(err)
		common.V2Fail(c, "failed to update article", err)
		return
	}
	common.V2Success(c, resp)
}

// DeleteArticle handles DELETE /api/v1/articles/:id
// @Summary Delete an article and its images
// @Tags articles
// @Param id path int true "article ID"
// @Success 200 {object} common.V2Response
// @Security BearerAuth
// @Router /articles/{id} [delete]
func (h *ArticleHandler) DeleteArticle(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.V2ErrorResponse(c, http.StatusBadRequest, "invalid article id", err)
		return
	}

	if err := h.service.DeleteArticle(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		common.V2Fail(c, "failed to delete article", err)
		return
	}
	common.V2Success(c, gin.H{"id": id})
}
