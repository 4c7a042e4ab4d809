package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shaoyi1998/blog-backend/internal/domain"
	"github.com/shaoyi1998/blog-backend/internal/repository"
	"github.com/shaoyi1998/blog-backend/pkg/storage"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var errInjected = errors.New("injected storage failure")

// faultyStore wraps a LocalStore and fails selected operations
type faultyStore struct {
	*storage.LocalStore

	mu         sync.Mutex
	failWrites bool
	failDelete map[string]bool
}

func (s *faultyStore) Write(ctx context.Context, p string, data []byte) error {
	s.mu.Lock()
	fail := s.failWrites
	s.mu.Unlock()
	if fail {
		return errInjected
	}
	return s.LocalStore.Write(ctx, p, data)
}

func (s *faultyStore) Delete(ctx context.Context, p string) error {
	s.mu.Lock()
	fail := s.failDelete[p]
	s.mu.Unlock()
	if fail {
		return errInjected
	}
	return s.LocalStore.Delete(ctx, p)
}

func (s *faultyStore) setFailWrites(v bool) {
	s.mu.Lock()
	s.failWrites = v
	s.mu.Unlock()
}

type testEnv struct {
	db        *gorm.DB
	store     *faultyStore
	assets    repository.AssetRepository
	articles  repository.ArticleRepository
	txm       repository.TransactionManager
	rewriter  *Rewriter
	lifecycle *Lifecycle
	reclaimer *Reclaimer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	db, err := gorm.Open(sqlite.Open(filepath.Join(dir, "test.db")+"?_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Article{}, &domain.Asset{}))

	local, err := storage.NewLocalStore(filepath.Join(dir, "files"), "/media")
	require.NoError(t, err)
	store := &faultyStore{LocalStore: local, failDelete: map[string]bool{}}

	assets := repository.NewAssetRepository(db)
	txm := repository.NewTransactionManager(db)

	return &testEnv{
		db:        db,
		store:     store,
		assets:    assets,
		articles:  repository.NewArticleRepository(db),
		txm:       txm,
		rewriter:  NewRewriter(NewExtractor(NewMatcher("")), JPEGCodec{}, store, assets, txm),
		lifecycle: NewLifecycle(store, assets),
		reclaimer: NewReclaimer(store, assets),
	}
}

func (e *testEnv) createArticle(t *testing.T, title string) *domain.Article {
	t.Helper()
	a := &domain.Article{Title: title, Content: "placeholder"}
	require.NoError(t, e.articles.Create(context.Background(), a))
	return a
}

func (e *testEnv) exists(t *testing.T, p string) bool {
	t.Helper()
	ok, err := e.store.Exists(context.Background(), p)
	require.NoError(t, err)
	return ok
}

// pngBytes returns a w x h PNG filled with c
func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// pngDataURI returns a data:image/png;base64 URI of a small solid image
func pngDataURI(t *testing.T, c color.Color) string {
	t.Helper()
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, 4, 3, c))
}

var (
	red   = color.NRGBA{R: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
)

func defaultPolicy() Policy {
	return Policy{SaveAsFile: true, Quality: DefaultQuality}
}
