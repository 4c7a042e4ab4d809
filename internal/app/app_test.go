package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shaoyi1998/blog-backend/internal/config"
	"github.com/shaoyi1998/blog-backend/internal/domain"
	"github.com/shaoyi1998/blog-backend/internal/migration"
	"github.com/shaoyi1998/blog-backend/pkg/lock"
	"github.com/shaoyi1998/blog-backend/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestNewStore(t *testing.T) {
	store, err := NewStore(config.StorageConfig{Driver: "local", Root: t.TempDir(), PublicPrefix: "/media"})
	require.NoError(t, err)
	assert.IsType(t, &storage.LocalStore{}, store)

	_, err = NewStore(config.StorageConfig{Driver: "ftp"})
	assert.Error(t, err)

	// s3 requires a bucket
	_, err = NewStore(config.StorageConfig{Driver: "s3"})
	assert.Error(t, err)
}

func TestNew_WiresServices(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "app.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Media.CompressQuality = 65
	require.NoError(t, migration.Run(db, MediaDefaults(cfg)))

	store, err := storage.NewLocalStore(t.TempDir(), "/media")
	require.NoError(t, err)

	a := New(cfg, db, nil, store)
	assert.IsType(t, &lock.LocalLocker{}, a.Locker)

	settings, err := a.Settings.GetMediaSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &domain.MediaSettings{CompressQuality: 65, SaveAsFile: true}, settings)

	created, err := a.Articles.CreateArticle(context.Background(), &domain.ArticleRequest{Title: "wired", Content: "<p>text</p>"}, "root")
	require.NoError(t, err)
	assert.Equal(t, "<p>text</p>", created.Article.Content)
}
