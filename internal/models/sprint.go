package models

import "time"

// SprintConfig is the Jira sprint a conversation follows.
type SprintConfig struct {
	ConversationID  string `gorm:"primaryKey"`
	SprintID        string
	BoardID         string
	SprintName      string
	SprintKey       string
	CalendarEventID string // Google Calendar Event ID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (s SprintConfig) DisplayName() string {
	if s.SprintName != "" {
		return s.SprintName
	}
	if s.SprintKey != "" {
		return s.SprintKey
	}
	return s.SprintID
}
