package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shaoyi1998/blog-backend/internal/common"
	"github.com/shaoyi1998/blog-backend/internal/domain"
	"github.com/shaoyi1998/blog-backend/internal/media"
	"github.com/shaoyi1998/blog-backend/internal/repository"
	"github.com/shaoyi1998/blog-backend/pkg/cache"
	"github.com/shaoyi1998/blog-backend/pkg/lock"
	pkglogger "github.com/shaoyi1998/blog-backend/pkg/logger"
	"github.com/shaoyi1998/blog-backend/pkg/storage"
	"gorm.io/gorm"
)

const articleLockTTL = 2 * time.Minute

// ArticleService business logic for articles. Writes run the inline image
// rewrite and persist the article in one transaction.
type ArticleService interface {
	ListArticles(ctx context.Context, category string, page, limit int) ([]domain.ArticleResponse, *common.V2Meta, error)
	GetArticle(ctx context.Context, id uint64) (*domain.ArticleResponse, error)
	CreateArticle(ctx context.Context, req *domain.ArticleRequest, authorID string) (*domain.ArticleWriteResponse, error)
	UpdateArticle(ctx context.Context, id uint64, req *domain.ArticleRequest) (*domain.ArticleWriteResponse, error)
	DeleteArticle(ctx context.Context, id uint64) error
}

// ArticleServiceDeps groups the collaborators of ArticleService
type ArticleServiceDeps struct {
	Articles        repository.ArticleRepository
	TxManager       repository.TransactionManager
	Rewriter        *media.Rewriter
	Lifecycle       *media.Lifecycle
	Store           storage.Store
	Settings        SettingService
	Locker          lock.Locker
	Cache           cache.Service // optional
	MaxContentBytes int64
}

type articleService struct {
	ArticleServiceDeps
}

// NewArticleService creates a new ArticleService
func NewArticleService(deps ArticleServiceDeps) ArticleService {
	if deps.Cache == nil {
		deps.Cache = cache.NewService(nil)
	}
	return &articleService{ArticleServiceDeps: deps}
}

// ListArticles retrieves paginated articles
func (s *articleService) ListArticles(ctx context.Context, category string, page, limit int) ([]domain.ArticleResponse, *common.V2Meta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	articles, total, err := s.Articles.List(ctx, category, page, limit)
	if err != nil {
		return nil, nil, err
	}

	responses := make([]domain.ArticleResponse, len(articles))
	for i, a := range articles {
		responses[i] = a.ToResponse()
	}
	return responses, common.NewV2Meta(page, limit, total), nil
}

// GetArticle retrieves one article, from cache when possible
func (s *articleService) GetArticle(ctx context.Context, id uint64) (*domain.ArticleResponse, error) {
	var cached domain.ArticleResponse
	if err := s.Cache.GetArticle(ctx, id, &cached); err == nil {
		return &cached, nil
	}

	article, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := article.ToResponse()
	if err := s.Cache.SetArticle(ctx, id, resp); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Uint64("article_id", id).Msg("article cache write failed")
	}
	return &resp, nil
}

// CreateArticle stores a new article, extracting its inline images
func (s *articleService) CreateArticle(ctx context.Context, req *domain.ArticleRequest, authorID string) (*domain.ArticleWriteResponse, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	release, err := s.lock(ctx, "title:"+media.ArticlePrefix(req.Title))
	if err != nil {
		return nil, err
	}
	defer release()

	policy, err := s.Settings.MediaPolicy(ctx)
	if err != nil {
		return nil, err
	}

	article := &domain.Article{
		Title:     req.Title,
		Content:   req.Content,
		Category:  req.Category,
		AuthorID:  authorID,
		ReleaseAt: releaseAt(req),
	}

	var result *media.RewriteResult
	err = s.TxManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.ensureTitleFree(ctx, req.Title, 0); err != nil {
			return err
		}
		if err := s.Articles.Create(ctx, article); err != nil {
			return translateWriteErr(err)
		}

		result, err = s.rewrite(ctx, article, policy)
		if err != nil {
			return err
		}
		return s.Articles.Update(ctx, article)
	})
	if err != nil {
		s.revert(ctx, result)
		return nil, err
	}

	pkglogger.GetLogger().Info().
		Uint64("article_id", article.ID).
		Int("assets", len(result.Created)).
		Int("failures", len(result.Failures)).
		Msg("article created")
	return s.writeResponse(article, result), nil
}

// UpdateArticle replaces an article's fields and content. Images the new
// content no longer references are removed.
func (s *articleService) UpdateArticle(ctx context.Context, id uint64, req *domain.ArticleRequest) (*domain.ArticleWriteResponse, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	release, err := s.lock(ctx, fmt.Sprintf("article:%d", id))
	if err != nil {
		return nil, err
	}
	defer release()

	article, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if article.Title != req.Title {
		releaseTitle, err := s.lock(ctx, "title:"+media.ArticlePrefix(req.Title))
		if err != nil {
			return nil, err
		}
		defer releaseTitle()
	}

	policy, err := s.Settings.MediaPolicy(ctx)
	if err != nil {
		return nil, err
	}

	article.Title = req.Title
	article.Content = req.Content
	article.Category = req.Category
	if req.ReleaseAt != nil {
		article.ReleaseAt = *req.ReleaseAt
	}

	var result *media.RewriteResult
	err = s.TxManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.ensureTitleFree(ctx, req.Title, id); err != nil {
			return err
		}

		result, err = s.rewrite(ctx, article, policy)
		if err != nil {
			return err
		}
		return translateWriteErr(s.Articles.Update(ctx, article))
	})
	if err != nil {
		s.revert(ctx, result)
		return nil, err
	}
	s.invalidate(ctx, id)

	pkglogger.GetLogger().Info().
		Uint64("article_id", id).
		Int("assets", len(result.Created)).
		Int("removed", len(result.Superseded)).
		Int("failures", len(result.Failures)).
		Msg("article updated")
	return s.writeResponse(article, result), nil
}

// DeleteArticle deletes an article with all of its assets and files
func (s *articleService) DeleteArticle(ctx context.Context, id uint64) error {
	release, err := s.lock(ctx, fmt.Sprintf("article:%d", id))
	if err != nil {
		return err
	}
	defer release()

	journal := media.NewJournal(s.Store)
	var removed int
	err = s.TxManager.ExecTx(ctx, func(ctx context.Context) error {
		if _, err := s.find(ctx, id); err != nil {
			return err
		}
		removed, err = s.Lifecycle.RemoveArticle(ctx, id, journal)
		if err != nil {
			return err
		}
		return s.Articles.Delete(ctx, id)
	})
	if err != nil {
		if rerr := journal.Revert(context.WithoutCancel(ctx)); rerr != nil {
			pkglogger.GetLogger().Error().Err(rerr).Uint64("article_id", id).Msg("failed to restore asset files")
		}
		return err
	}
	s.invalidate(ctx, id)

	pkglogger.GetLogger().Info().Uint64("article_id", id).Int("assets", removed).Msg("article deleted")
	return nil
}

// rewrite runs the inline image rewrite for article inside the current
// transaction and drops superseded assets.
func (s *articleService) rewrite(ctx context.Context, article *domain.Article, policy media.Policy) (*media.RewriteResult, error) {
	result, err := s.Rewriter.Rewrite(ctx, media.RewriteRequest{
		ArticleID: article.ID,
		Title:     article.Title,
		Content:   article.Content,
	}, policy)
	if err != nil {
		return result, err
	}
	if err := s.Lifecycle.Remove(ctx, result.Superseded, result.Journal); err != nil {
		return result, err
	}
	article.Content = result.Content
	return result, nil
}

// revert puts back files changed by a rewrite whose transaction failed
func (s *articleService) revert(ctx context.Context, result *media.RewriteResult) {
	if result == nil {
		return
	}
	if err := result.Journal.Revert(context.WithoutCancel(ctx)); err != nil {
		pkglogger.GetLogger().Error().Err(err).Msg("failed to restore asset files after rollback")
	}
}

func (s *articleService) validate(req *domain.ArticleRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	if s.MaxContentBytes > 0 && int64(len(req.Content)) > s.MaxContentBytes {
		return common.ErrContentTooLarge
	}
	return nil
}

func (s *articleService) lock(ctx context.Context, key string) (func(), error) {
	release, err := s.Locker.Acquire(ctx, key, articleLockTTL)
	if errors.Is(err, lock.ErrNotAcquired) {
		return nil, common.ErrArticleLocked
	}
	return release, err
}

func (s *articleService) find(ctx context.Context, id uint64) (*domain.Article, error) {
	article, err := s.Articles.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrArticleNotFound
	}
	return article, err
}

// ensureTitleFree fails when another article than selfID uses title
func (s *articleService) ensureTitleFree(ctx context.Context, title string, selfID uint64) error {
	existing, err := s.Articles.FindByTitle(ctx, title)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != selfID:
		return common.ErrTitleTaken
	}
	return nil
}

func (s *articleService) invalidate(ctx context.Context, id uint64) {
	if err := s.Cache.InvalidateArticle(ctx, id); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Uint64("article_id", id).Msg("article cache invalidation failed")
	}
}

func (s *articleService) writeResponse(article *domain.Article, result *media.RewriteResult) *domain.ArticleWriteResponse {
	resp := &domain.ArticleWriteResponse{
		Article: article.ToResponse(),
		Assets:  toAssetResponses(s.Store, result.Created),
	}
	for _, f := range result.Failures {
		resp.Failures = append(resp.Failures, domain.InlineFailureDTO{
			Index:  f.Index,
			Kind:   media.ErrorKind(f.Err),
			Reason: f.Err.Error(),
		})
	}
	return resp
}

func translateWriteErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return common.ErrTitleTaken
	}
	return err
}

func releaseAt(req *domain.ArticleRequest) time.Time {
	if req.ReleaseAt != nil {
		return *req.ReleaseAt
	}
	return time.Now()
}
