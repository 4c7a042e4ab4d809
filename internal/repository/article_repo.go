package repository

import (
	"context"

	"github.com/shaoyi1998/blog-backend/internal/domain"
	"gorm.io/gorm"
)

// ArticleRepository article data access interface
type ArticleRepository interface {
	FindByID(ctx context.Context, id uint64) (*domain.Article, error)
	FindByTitle(ctx context.Context, title string) (*domain.Article, error)
	List(ctx context.Context, category string, page, limit int) ([]*domain.Article, int64, error)
	Create(ctx context.Context, article *domain.Article) error
	Update(ctx context.Context, article *domain.Article) error
	Delete(ctx context.Context, id uint64) error
}

type articleRepository struct {
	db *gorm.DB
}

// NewArticleRepository creates a new ArticleRepository
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

func (r *articleRepository) FindByID(ctx context.Context, id uint64) (*domain.Article, error) {
	var article domain.Article
	if err := conn(ctx, r.db).First(&article, id).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepository) FindByTitle(ctx context.Context, title string) (*domain.Article, error) {
	var article domain.Article
	if err := conn(ctx, r.db).Where("title = ?", title).First(&article).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

// List returns one page of articles, newest release first
func (r *articleRepository) List(ctx context.Context, category string, page, limit int) ([]*domain.Article, int64, error) {
	var articles []*domain.Article
	var total int64

	query := conn(ctx, r.db).Model(&domain.Article{})
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("release_at DESC, id DESC").Offset(offset).Limit(limit).Find(&articles).Error; err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

func (r *articleRepository) Create(ctx context.Context, article *domain.Article) error {
	return conn(ctx, r.db).Create(article).Error
}

func (r *articleRepository) Update(ctx context.Context, article *domain.Article) error {
	return conn(ctx, r.db).Save(article).Error
}

func (r *articleRepository) Delete(ctx context.Context, id uint64) error {
	return conn(ctx, r.db).Delete(&domain.Article{}, id).Error
}
