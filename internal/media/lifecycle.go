package media

import (
	"context"
	"fmt"

	"github.com/shaoyi1998/blog-backend/internal/domain"
	"github.com/shaoyi1998/blog-backend/internal/repository"
	pkglogger "github.com/shaoyi1998/blog-backend/pkg/logger"
	"github.com/shaoyi1998/blog-backend/pkg/storage"
)

// Lifecycle removes asset records together with their files
type Lifecycle struct {
	store  storage.Store
	assets repository.AssetRepository
}

// NewLifecycle creates a Lifecycle
func NewLifecycle(store storage.Store, assets repository.AssetRepository) *Lifecycle {
	return &Lifecycle{store: store, assets: assets}
}

// Remove deletes each asset's record and then its file. It is meant to run
// inside the caller's transaction: deleted files are backed up in journal
// so the caller can put them back if the transaction rolls back.
func (l *Lifecycle) Remove(ctx context.Context, assets []domain.Asset, journal *Journal) error {
	for _, a := range assets {
		if err := l.assets.Delete(ctx, a.ID); err != nil {
			return &StorageDeleteError{Path: a.Path, Err: fmt.Errorf("record: %w", err)}
		}

		entry, err := backup(ctx, l.store, a.Path)
		if err != nil {
			return &StorageDeleteError{Path: a.Path, Err: fmt.Errorf("backup: %w", err)}
		}
		if err := l.store.Delete(ctx, a.Path); err != nil {
			return &StorageDeleteError{Path: a.Path, Err: err}
		}
		journal.add(entry)

		pkglogger.GetLogger().Debug().
			Uint64("article_id", a.ArticleID).
			Str("path", a.Path).
			Msg("asset removed")
	}
	return nil
}

// RemoveArticle deletes every asset owned by articleID
func (l *Lifecycle) RemoveArticle(ctx context.Context, articleID uint64, journal *Journal) (int, error) {
	assets, err := l.assets.ListByArticle(ctx, articleID)
	if err != nil {
		return 0, fmt.Errorf("list article assets: %w", err)
	}
	if err := l.Remove(ctx, assets, journal); err != nil {
		return 0, err
	}
	return len(assets), nil
}
