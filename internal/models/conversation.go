package models

import "time"

// ConversationReference is what the bot needs to message a conversation
// outside of a turn.
type ConversationReference struct {
	ConversationID string    `json:"conversationId" gorm:"primaryKey"`
	ServiceURL     string    `json:"serviceUrl"`
	ChannelID      string    `json:"channelId"`
	BotID          string    `json:"botId"`
	BotName        string    `json:"botName"`
	UserID         string    `json:"userId"`
	UserName       string    `json:"userName"`
	TenantID       string    `json:"tenantId"`
	Muted          bool      `json:"muted"` // proactive notifications cancelled
	UpdatedAt      time.Time `json:"updatedAt"`
}
