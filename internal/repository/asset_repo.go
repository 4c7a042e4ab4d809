package repository

import (
	"context"
	"errors"

	"github.com/shaoyi1998/blog-backend/internal/domain"
	"gorm.io/gorm"
)

// AssetRepository asset record data access interface
type AssetRepository interface {
	// FindByPath returns the record stored at path, or nil when there is none
	FindByPath(ctx context.Context, path string) (*domain.Asset, error)
	ListByArticle(ctx context.Context, articleID uint64) ([]domain.Asset, error)
	// ListByPrefix returns every record whose path starts with prefix
	ListByPrefix(ctx context.Context, prefix string) ([]domain.Asset, error)
	ListPaths(ctx context.Context) ([]string, error)
	Create(ctx context.Context, asset *domain.Asset) error
	Delete(ctx context.Context, id uint64) error
}

type assetRepository struct {
	db *gorm.DB
}

// NewAssetRepository creates a new AssetRepository
func NewAssetRepository(db *gorm.DB) AssetRepository {
	return &assetRepository{db: db}
}

// FindByPath finds an asset by its storage path
func (r *assetRepository) FindByPath(ctx context.Context, path string) (*domain.Asset, error) {
	var asset domain.Asset
	err := conn(ctx, r.db).Where("path = ?", path).First(&asset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// ListByArticle lists the assets owned by an article, in path order
func (r *assetRepository) ListByArticle(ctx context.Context, articleID uint64) ([]domain.Asset, error) {
	var assets []domain.Asset
	err := conn(ctx, r.db).Where("article_id = ?", articleID).
		Order("path ASC").
		Find(&assets).Error
	return assets, err
}

// ListByPrefix lists assets below a path prefix
func (r *assetRepository) ListByPrefix(ctx context.Context, prefix string) ([]domain.Asset, error) {
	var assets []domain.Asset
	err := conn(ctx, r.db).Where("path LIKE ? ESCAPE '!'", escapeLike(prefix)+"%").
		Order("path ASC").
		Find(&assets).Error
	return assets, err
}

// ListPaths returns the storage path of every asset record
func (r *assetRepository) ListPaths(ctx context.Context) ([]string, error) {
	var paths []string
	err := conn(ctx, r.db).Model(&domain.Asset{}).Pluck("path", &paths).Error
	return paths, err
}

// Create creates a new asset record
func (r *assetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	return conn(ctx, r.db).Create(asset).Error
}

// Delete removes an asset record
func (r *assetRepository) Delete(ctx context.Context, id uint64) error {
	return conn(ctx, r.db).Delete(&domain.Asset{}, id).Error
}

// escapeLike escapes LIKE wildcards using '!' as the escape character
func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '!' {
			out = append(out, '!')
		}
		out = append(out, r)
	}
	return string(out)
}
