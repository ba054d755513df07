package database

import (
	"github.com/atifjaved999/mini-coaching/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Open(cfg *config.Config) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Duplicate-key violations surface as gorm.ErrDuplicatedKey so the
		// booking path can map them to the already-booked outcome.
		TranslateError: true,
	})
}
