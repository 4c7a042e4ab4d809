package migration

import (
	"strconv"

	"github.com/shaoyi1998/blog-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Run creates or updates the blog tables and seeds the media settings
// that are not set yet.
func Run(db *gorm.DB, defaults domain.MediaSettings) error {
	if err := db.AutoMigrate(&domain.Article{}, &domain.Asset{}, &domain.Setting{}); err != nil {
		return err
	}
	return seedSettings(db, defaults)
}

func seedSettings(db *gorm.DB, defaults domain.MediaSettings) error {
	settings := []domain.Setting{
		{Key: domain.SettingCompressQuality, Value: strconv.Itoa(defaults.CompressQuality), UpdatedBy: "migration"},
		{Key: domain.SettingSaveAsFile, Value: strconv.FormatBool(defaults.SaveAsFile), UpdatedBy: "migration"},
	}
	// existing values are operator choices and stay untouched
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&settings).Error
}
