package domain

import "time"

// Asset is an image file extracted from an article's inline content (article_assets table).
// Path is the storage key, e.g. article_images/demo/0.jpeg.
type Asset struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ArticleID uint64    `gorm:"column:article_id;index;not null" json:"article_id"`
	Path      string    `gorm:"column:path;type:varchar(255);uniqueIndex;not null" json:"path"`
	Size      int       `gorm:"column:size" json:"size"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName returns the table name for Asset
func (Asset) TableName() string { return "article_assets" }

// AssetResponse is an asset with its resolvable URL
type AssetResponse struct {
	ID        uint64 `json:"id"`
	ArticleID uint64 `json:"article_id"`
	Path      string `json:"path"`
	URL       string `json:"url"`
	Size      int    `json:"size"`
}

// ReclaimResponse reports an orphan reclaim run
type ReclaimResponse struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
}

// ConsistencyIssue is one mismatch between asset records and stored files
type ConsistencyIssue struct {
	Path   string `json:"path"`
	Kind   string `json:"kind"` // missing_file | untracked_file
	Detail string `json:"detail"`
}
