package domain

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Setting is a runtime-mutable key/value setting (settings table)
type Setting struct {
	Key       string    `gorm:"column:key;primaryKey;type:varchar(64)" json:"key"`
	Value     string    `gorm:"column:value;type:varchar(255)" json:"value"`
	UpdatedBy string    `gorm:"column:updated_by;type:varchar(50)" json:"updated_by"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Setting keys read by the media pipeline
const (
	SettingCompressQuality = "compress_quality"
	SettingSaveAsFile      = "save_as_file"
)

// MediaSettings is the media policy as exposed to operators
type MediaSettings struct {
	CompressQuality int  `json:"compress_quality"`
	SaveAsFile      bool `json:"save_as_file"`
}

// UpdateMediaSettingsRequest partially updates the media policy
type UpdateMediaSettingsRequest struct {
	CompressQuality *int  `json:"compress_quality"`
	SaveAsFile      *bool `json:"save_as_file"`
}

// Validate checks the quality range; values outside 20..100 are rejected
// here rather than silently clamped.
func (r UpdateMediaSettingsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CompressQuality, validation.NilOrNotEmpty, validation.Min(20), validation.Max(100)),
	)
}
