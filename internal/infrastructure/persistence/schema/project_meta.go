package schema

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gentletalk/internal/errs"
)

// Version is bumped whenever a migration changes table shape.
const Version = "1"

const versionKey = "schema_version"

type ProjectMeta struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Key       string    `gorm:"column:key;type:text;uniqueIndex;not null"`
	Value     string    `gorm:"column:value;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (ProjectMeta) TableName() string {
	return "project_meta"
}

// Stamp records Version as the migrated schema version.
func Stamp(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&ProjectMeta{}); err != nil {
		return errs.Wrap(err, "migrate project meta")
	}
	row := ProjectMeta{Key: versionKey, Value: Version}
	if err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return errs.Wrap(err, "stamp schema version")
	}
	return nil
}

// CurrentVersion returns the stamped version, or "" before the first init-db.
func CurrentVersion(ctx context.Context, db *gorm.DB) (string, error) {
	if !db.WithContext(ctx).Migrator().HasTable(&ProjectMeta{}) {
		return "", nil
	}
	var row ProjectMeta
	if err := db.WithContext(ctx).Where("key = ?", versionKey).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", errs.Wrap(err, "query schema version")
	}
	return row.Value, nil
}
