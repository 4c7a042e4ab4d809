package service

import (
	"context"
	"errors"
	"time"

	"github.com/shaoyi1998/blog-backend/internal/common"
	"github.com/shaoyi1998/blog-backend/internal/domain"
	"github.com/shaoyi1998/blog-backend/internal/media"
	"github.com/shaoyi1998/blog-backend/internal/repository"
	"github.com/shaoyi1998/blog-backend/pkg/lock"
	"github.com/shaoyi1998/blog-backend/pkg/storage"
	"gorm.io/gorm"
)

const (
	reclaimLockKey = "assets:reclaim"
	reclaimLockTTL = 10 * time.Minute
)

// AssetService read access to article images and operator maintenance
type AssetService interface {
	ListImages(ctx context.Context, articleID uint64) ([]domain.AssetResponse, error)
	Reclaim(ctx context.Context) (*domain.ReclaimResponse, error)
	Audit(ctx context.Context) ([]domain.ConsistencyIssue, error)
}

type assetService struct {
	articles  repository.ArticleRepository
	assets    repository.AssetRepository
	store     storage.Store
	reclaimer *media.Reclaimer
	locker    lock.Locker
}

// NewAssetService creates a new AssetService
func NewAssetService(
	articles repository.ArticleRepository,
	assets repository.AssetRepository,
	store storage.Store,
	reclaimer *media.Reclaimer,
	locker lock.Locker,
) AssetService {
	return &assetService{
		articles:  articles,
		assets:    assets,
		store:     store,
		reclaimer: reclaimer,
		locker:    locker,
	}
}

// ListImages lists the stored images of an article
func (s *assetService) ListImages(ctx context.Context, articleID uint64) ([]domain.AssetResponse, error) {
	if _, err := s.articles.FindByID(ctx, articleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrArticleNotFound
		}
		return nil, err
	}

	assets, err := s.assets.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	return toAssetResponses(s.store, assets), nil
}

// Reclaim deletes orphaned files. Only one reclaim runs at a time.
func (s *assetService) Reclaim(ctx context.Context) (*domain.ReclaimResponse, error) {
	release, err := s.locker.Acquire(ctx, reclaimLockKey, reclaimLockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, common.ErrReclaimRunning
		}
		return nil, err
	}
	defer release()

	res, err := s.reclaimer.Reclaim(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.ReclaimResponse{Total: res.Total, Succeeded: res.Succeeded}, nil
}

// Audit lists mismatches between records and files
func (s *assetService) Audit(ctx context.Context) ([]domain.ConsistencyIssue, error) {
	issues, err := s.reclaimer.Audit(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ConsistencyIssue, 0, len(issues))
	for _, issue := range issues {
		out = append(out, domain.ConsistencyIssue{
			Path:   issue.Path,
			Kind:   issue.Kind,
			Detail: issue.Error(),
		})
	}
	return out, nil
}

func toAssetResponses(store storage.Store, assets []domain.Asset) []domain.AssetResponse {
	out := make([]domain.AssetResponse, 0, len(assets))
	for _, a := range assets {
		out = append(out, domain.AssetResponse{
			ID:        a.ID,
			ArticleID: a.ArticleID,
			Path:      a.Path,
			URL:       store.URLFor(a.Path),
			Size:      a.Size,
		})
	}
	return out
}
