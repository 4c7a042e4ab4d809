package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shaoyi1998/blog-backend/internal/common"
	"github.com/shaoyi1998/blog-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockArticleService struct {
	mock.Mock
}

func (m *mockArticleService) ListArticles(ctx context.Context, category string, page, limit int) ([]domain.ArticleResponse, *common.V2Meta, error) {
	args := m.Called(ctx, category, page, limit)
	list, _ := args.Get(0).([]domain.ArticleResponse)
	meta, _ := args.Get(1).(*common.V2Meta)
	return list, meta, args.Error(2)
}

func (m *mockArticleService) GetArticle(ctx context.Context, id uint64) (*domain.ArticleResponse, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*domain.ArticleResponse)
	return resp, args.Error(1)
}

func (m *mockArticleService) CreateArticle(ctx context.Context, req *domain.ArticleRequest, authorID string) (*domain.ArticleWriteResponse, error) {
	args := m.Called(ctx, req, authorID)
	resp, _ := args.Get(0).(*domain.ArticleWriteResponse)
	return resp, args.Error(1)
}

func (m *mockArticleService) UpdateArticle(ctx context.Context, id uint64, req *domain.ArticleRequest) (*domain.ArticleWriteResponse, error) {
	args := m.Called(ctx, id, req)
	resp, _ := args.Get(0).(*domain.ArticleWriteResponse)
	return resp, args.Error(1)
}

func (m *mockArticleService) DeleteArticle(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

type mockAssetService struct {
	mock.Mock
}

func (m *mockAssetService) ListImages(ctx context.Context, articleID uint64) ([]domain.AssetResponse, error) {
	args := m.Called(ctx, articleID)
	list, _ := args.Get(0).([]domain.AssetResponse)
	return list, args.Error(1)
}

func (m *mockAssetService) Reclaim(ctx context.Context) (*domain.ReclaimResponse, error) {
	args := m.Called(ctx)
	resp, _ := args.Get(0).(*domain.ReclaimResponse)
	return resp, args.Error(1)
}

func (m *mockAssetService) Audit(ctx context.Context) ([]domain.ConsistencyIssue, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]domain.ConsistencyIssue)
	return list, args.Error(1)
}

// asUser stands in for JWTAuth
func asUser(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", id)
		c.Next()
	}
}

func newArticleRouter(svc *mockArticleService) *gin.Engine {
	h := NewArticleHandler(svc)
	r := gin.New()
	r.GET("/articles", h.ListArticles)
	r.GET("/articles/:id", h.GetArticle)
	r.POST("/articles", asUser("root"), h.CreateArticle)
	r.PUT("/articles/:id", asUser("root"), h.UpdateArticle)
	r.DELETE("/articles/:id", asUser("root"), h.DeleteArticle)
	return r
}

func do(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) common.V2Response {
	t.Helper()
	var resp common.V2Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestListArticles(t *testing.T) {
	svc := new(mockArticleService)
	svc.On("ListArticles", mock.Anything, "go", 2, 5).
		Return([]domain.ArticleResponse{{ID: 1, Title: "a"}}, common.NewV2Meta(2, 5, 6), nil)

	w := do(newArticleRouter(svc), http.MethodGet, "/articles?category=go&page=2&limit=5", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(2), resp.Meta.TotalPages)
	svc.AssertExpectations(t)
}

func TestGetArticle(t *testing.T) {
	svc := new(mockArticleService)
	svc.On("GetArticle", mock.Anything, uint64(7)).Return(&domain.ArticleResponse{ID: 7}, nil)
	svc.On("GetArticle", mock.Anything, uint64(8)).Return(nil, common.ErrArticleNotFound)
	r := newArticleRouter(svc)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/articles/7", nil).Code)

	w := do(r, http.MethodGet, "/articles/8", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, w).Error.Code)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/articles/abc", nil).Code)
}

func TestCreateArticle(t *testing.T) {
	svc := new(mockArticleService)
	req := &domain.ArticleRequest{Title: "hello", Content: "<p>x</p>"}
	svc.On("CreateArticle", mock.Anything, req, "root").Return(&domain.ArticleWriteResponse{
		Article:  domain.ArticleResponse{ID: 3, Title: "hello"},
		Failures: []domain.InlineFailureDTO{{Index: 1, Kind: "decode", Reason: "bad"}},
	}, nil)

	w := do(newArticleRouter(svc), http.MethodPost, "/articles", req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var body struct {
		Data domain.ArticleWriteResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, uint64(3), body.Data.Article.ID)
	require.Len(t, body.Data.Failures, 1)
	assert.Equal(t, 1, body.Data.Failures[0].Index)
	svc.AssertExpectations(t)
}

func TestCreateArticle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"title taken", common.ErrTitleTaken, http.StatusConflict},
		{"too large", common.ErrContentTooLarge, http.StatusRequestEntityTooLarge},
		{"invalid", common.ErrInvalidInput, http.StatusBadRequest},
		{"locked", common.ErrArticleLocked, http.StatusLocked},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockArticleService)
			svc.On("CreateArticle", mock.Anything, mock.Anything, "root").Return(nil, tt.err)

			w := do(newArticleRouter(svc), http.MethodPost, "/articles", domain.ArticleRequest{Title: "t", Content: "c"})

			assert.Equal(t, tt.status, w.Code)
			assert.False(t, decode(t, w).Success)
		})
	}
}

func TestCreateArticle_BadBody(t *testing.T) {
	svc := new(mockArticleService)
	req := httptest.NewRequest(http.MethodPost, "/articles", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	newArticleRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "CreateArticle", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateAndDeleteArticle(t *testing.T) {
	svc := new(mockArticleService)
	svc.On("UpdateArticle", mock.Anything, uint64(4), mock.Anything).Return(&domain.ArticleWriteResponse{}, nil)
	svc.On("DeleteArticle", mock.Anything, uint64(4)).Return(nil)
	svc.On("DeleteArticle", mock.Anything, uint64(5)).Return(common.ErrArticleNotFound)
	r := newArticleRouter(svc)

	assert.Equal(t, http.StatusOK, do(r, http.MethodPut, "/articles/4", domain.ArticleRequest{Title: "t", Content: "c"}).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodDelete, "/articles/4", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/articles/5", nil).Code)
	svc.AssertExpectations(t)
}

func TestAssetHandler(t *testing.T) {
	svc := new(mockAssetService)
	svc.On("ListImages", mock.Anything, uint64(1)).Return([]domain.AssetResponse{{URL: "/media/article_images/a/0.jpeg"}}, nil)
	svc.On("Reclaim", mock.Anything).Return(nil, common.ErrReclaimRunning).Once()
	svc.On("Audit", mock.Anything).Return([]domain.ConsistencyIssue{{Path: "p", Kind: "missing_file"}}, nil)

	h := NewAssetHandler(svc)
	r := gin.New()
	r.GET("/images", h.ListImages)
	r.POST("/reclaim", h.Reclaim)
	r.GET("/audit", h.Audit)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/images?article_id=1", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/images", nil).Code)
	assert.Equal(t, http.StatusConflict, do(r, http.MethodPost, "/reclaim", nil).Code)

	w := do(r, http.MethodGet, "/audit", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "missing_file")
	svc.AssertExpectations(t)
}
