package database

import (
	"fmt"
	"log/slog"

	"github.com/justsurfingit/temu/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the Postgres database and migrates the schema.
func Connect(dsn string) (*gorm.DB, error) {
	return Open(postgres.Open(dsn))
}

// Open connects through any gorm dialector and migrates the schema. Tests pass
// an in-memory SQLite dialector.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	slog.Info("Database connection established.")

	if err := db.AutoMigrate(models.All()...); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
