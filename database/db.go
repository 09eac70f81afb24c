package database

import (
	"fmt"

	"github.com/kev1N916/trial-bot/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Open(dbPath string) (*gorm.DB, error) {
	dbFile := sqlite.Open(dbPath)
	db, err := gorm.Open(dbFile, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.ConversationReference{}, &models.SprintConfig{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func Init(dbPath string) *gorm.DB {
	db, err := Open(dbPath)
	if err != nil {
		zap.L().Fatal("Failed to initialise database", zap.String("path", dbPath), zap.Error(err))
	}

	zap.L().Info("Database initialised and migrated successfully", zap.String("path", dbPath))

	return db
}
