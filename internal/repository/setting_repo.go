package repository

import (
	"context"

	"github.com/shaoyi1998/blog-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingRepository settings key/value table access
type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// GetAll returns every stored setting
func (r *SettingRepository) GetAll(ctx context.Context) ([]domain.Setting, error) {
	var settings []domain.Setting
	err := conn(ctx, r.db).Find(&settings).Error
	return settings, err
}

// Get returns the value of one key; gorm.ErrRecordNotFound when unset
func (r *SettingRepository) Get(ctx context.Context, key string) (string, error) {
	var setting domain.Setting
	err := conn(ctx, r.db).Where("`key` = ?", key).First(&setting).Error
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

// Set upserts a setting value
func (r *SettingRepository) Set(ctx context.Context, key, value, updatedBy string) error {
	setting := domain.Setting{
		Key:       key,
		Value:     value,
		UpdatedBy: updatedBy,
	}
	return conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_by", "updated_at"}),
	}).Create(&setting).Error
}
