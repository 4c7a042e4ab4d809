package migration

import (
	"path/filepath"
	"testing"

	"github.com/shaoyi1998/blog-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestRun_SeedsOnce(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "migrate.db")), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	require.NoError(t, Run(db, domain.MediaSettings{CompressQuality: 80, SaveAsFile: true}))

	// an operator change survives the next migration
	require.NoError(t, db.Model(&domain.Setting{}).
		Where("`key` = ?", domain.SettingCompressQuality).
		Update("value", "50").Error)
	require.NoError(t, Run(db, domain.MediaSettings{CompressQuality: 80, SaveAsFile: true}))

	var settings []domain.Setting
	require.NoError(t, db.Order("`key`").Find(&settings).Error)
	require.Len(t, settings, 2)
	assert.Equal(t, domain.SettingCompressQuality, settings[0].Key)
	assert.Equal(t, "50", settings[0].Value)
	assert.Equal(t, "true", settings[1].Value)

	assert.True(t, db.Migrator().HasTable(&domain.Article{}))
	assert.True(t, db.Migrator().HasTable(&domain.Asset{}))
}
