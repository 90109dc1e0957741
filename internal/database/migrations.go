package database

import (
	"errors"
	"time"

	"github.com/MarcoPoloResearchLab/ecofinds/internal/users"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const migrationBackfillUsernames = "2025-09-06_backfill_usernames_from_email"

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationBackfillUsernames, apply: backfillUsernames},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := migration.apply(db); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}
	return nil
}

// backfillUsernames targets users rows with an empty username but a non-empty email.
// The resolver derives a username whenever an email is present, so only rows written
// by earlier releases or loaded directly into the table match.
func backfillUsernames(db *gorm.DB) error {
	var pending []users.User
	if err := db.Where("username = '' AND email <> ''").Find(&pending).Error; err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for _, user := range pending {
			username := users.DeriveUsername("", user.Email)
			if err := tx.Model(&users.User{}).Where("id = ?", user.ID).Update("username", username).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
