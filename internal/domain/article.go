package domain

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Article is a published rich-text document (articles table)
type Article struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"column:title;type:varchar(50);uniqueIndex" json:"title"`
	Content   string    `gorm:"column:content;type:longtext" json:"content"`
	Category  string    `gorm:"column:category;type:varchar(200);index" json:"category"`
	AuthorID  string    `gorm:"column:author_id;type:varchar(50);index" json:"author_id"`
	ReleaseAt time.Time `gorm:"column:release_at" json:"release_at"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Assets []Asset `gorm:"foreignKey:ArticleID" json:"-"`
}

// TableName returns the table name for Article
func (Article) TableName() string { return "articles" }

// ArticleRequest is the create/update payload
type ArticleRequest struct {
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Category  string     `json:"category"`
	ReleaseAt *time.Time `json:"release_at"`
}

// Validate checks simple field constraints
func (r ArticleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.RuneLength(1, 50)),
		validation.Field(&r.Content, validation.Required),
		validation.Field(&r.Category, validation.RuneLength(0, 200)),
	)
}

// ArticleResponse is an article as returned to readers
type ArticleResponse struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	AuthorID  string    `json:"author_id"`
	ReleaseAt time.Time `json:"release_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToResponse converts an Article to its API shape
func (a *Article) ToResponse() ArticleResponse {
	return ArticleResponse{
		ID:        a.ID,
		Title:     a.Title,
		Content:   a.Content,
		Category:  a.Category,
		AuthorID:  a.AuthorID,
		ReleaseAt: a.ReleaseAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// ArticleWriteResponse is returned from create/update; Failures lists the
// inline images that could not be stored and were left untouched in content.
type ArticleWriteResponse struct {
	Article  ArticleResponse    `json:"article"`
	Assets   []AssetResponse    `json:"assets"`
	Failures []InlineFailureDTO `json:"failures,omitempty"`
}

// InlineFailureDTO describes one inline image left un-substituted
type InlineFailureDTO struct {
	Index  int    `json:"index"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}
