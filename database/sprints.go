package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/kev1N916/trial-bot/internal/models"
	"gorm.io/gorm"
)

var ErrSprintNotConfigured = errors.New("no sprint configured for conversation")

type SprintStore struct {
	DB *gorm.DB
}

func (s *SprintStore) SaveSprint(ctx context.Context, cfg models.SprintConfig) error {
	if result := s.DB.WithContext(ctx).Save(&cfg); result.Error != nil {
		return fmt.Errorf("failed to save sprint configuration: %w", result.Error)
	}
	return nil
}

func (s *SprintStore) GetSprint(ctx context.Context, conversationID string) (models.SprintConfig, error) {
	var cfg models.SprintConfig
	err := s.DB.WithContext(ctx).First(&cfg, "conversation_id = ?", conversationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return cfg, fmt.Errorf("%w: %s", ErrSprintNotConfigured, conversationID)
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to load sprint configuration: %w", err)
	}
	return cfg, nil
}
