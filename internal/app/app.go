// Package app wires configuration into repositories, the media pipeline and
// services. Both the API server and blogctl build on it.
package app

import (
	"fmt"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/shaoyi1998/blog-backend/internal/config"
	"github.com/shaoyi1998/blog-backend/internal/domain"
	"github.com/shaoyi1998/blog-backend/internal/media"
	"github.com/shaoyi1998/blog-backend/internal/repository"
	"github.com/shaoyi1998/blog-backend/internal/service"
	"github.com/shaoyi1998/blog-backend/pkg/cache"
	"github.com/shaoyi1998/blog-backend/pkg/lock"
	pkglogger "github.com/shaoyi1998/blog-backend/pkg/logger"
	pkgredis "github.com/shaoyi1998/blog-backend/pkg/redis"
	"github.com/shaoyi1998/blog-backend/pkg/storage"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const lockPrefix = "blog:lock:"

// App holds the wired services
type App struct {
	DB       *gorm.DB
	Redis    *redis.Client // nil when disabled or unreachable
	Store    storage.Store
	Locker   lock.Locker
	Articles service.ArticleService
	Assets   service.AssetService
	Settings service.SettingService
}

// MediaDefaults converts the media config section into setting defaults
func MediaDefaults(cfg *config.Config) domain.MediaSettings {
	return domain.MediaSettings{
		CompressQuality: cfg.Media.CompressQuality,
		SaveAsFile:      cfg.Media.SaveAsFile,
	}
}

// InitDB opens the MySQL connection
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	mysqlCfg, err := mysqldriver.ParseDSN(cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}
	if mysqlCfg.Params == nil {
		mysqlCfg.Params = map[string]string{}
	}
	mysqlCfg.Params["time_zone"] = "'+00:00'"

	level := gormlogger.Warn
	if cfg.IsDevelopment() {
		level = gormlogger.Info
	}
	db, err := gorm.Open(mysql.Open(mysqlCfg.FormatDSN()), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	return db, nil
}

// InitRedis connects when enabled. Failure is logged and yields nil so the
// server falls back to in-process locks and no cache.
func InitRedis(cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	client, err := pkgredis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize)
	if err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("continuing without Redis")
		return nil
	}
	pkglogger.Info("Connected to Redis")
	return client
}

// NewStore builds the asset store named by cfg.Storage.Driver
func NewStore(cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Driver {
	case "", "local":
		return storage.NewLocalStore(cfg.Root, cfg.PublicPrefix)
	case "s3":
		return storage.NewS3Store(storage.S3Config{
			Endpoint:        cfg.Endpoint,
			Region:          cfg.Region,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
			Bucket:          cfg.Bucket,
			CDNURL:          cfg.CDNURL,
			BasePath:        cfg.BasePath,
			ForcePathStyle:  cfg.ForcePathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// New wires services on top of an open database, an optional Redis client
// and a store
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, store storage.Store) *App {
	articleRepo := repository.NewArticleRepository(db)
	assetRepo := repository.NewAssetRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	txm := repository.NewTransactionManager(db)

	locker := lock.New(redisClient, lockPrefix)
	settings := service.NewSettingService(settingRepo, MediaDefaults(cfg))

	extractor := media.NewExtractor(media.NewMatcher(cfg.Media.Format))
	rewriter := media.NewRewriter(extractor, media.JPEGCodec{}, store, assetRepo, txm)
	lifecycle := media.NewLifecycle(store, assetRepo)
	reclaimer := media.NewReclaimer(store, assetRepo)

	return &App{
		DB:     db,
		Redis:  redisClient,
		Store:  store,
		Locker: locker,
		Articles: service.NewArticleService(service.ArticleServiceDeps{
			Articles:        articleRepo,
			TxManager:       txm,
			Rewriter:        rewriter,
			Lifecycle:       lifecycle,
			Store:           store,
			Settings:        settings,
			Locker:          locker,
			Cache:           cache.NewService(redisClient),
			MaxContentBytes: cfg.Media.MaxContentBytes,
		}),
		Assets:   service.NewAssetService(articleRepo, assetRepo, store, reclaimer, locker),
		Settings: settings,
	}
}

// Close releases the database and Redis connections
func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
