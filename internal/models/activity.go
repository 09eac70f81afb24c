package models

import (
	"encoding/json"
	"time"

	"github.com/kev1N916/trial-bot/internal/cards"
)

const (
	ActivityTypeMessage            = "message"
	ActivityTypeConversationUpdate = "conversationUpdate"

	DeliveryModeExpectReplies = "expectReplies"
)

type ChannelAccount struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type ConversationAccount struct {
	ID               string `json:"id"`
	Name             string `json:"name,omitempty"`
	ConversationType string `json:"conversationType,omitempty"`
	TenantID         string `json:"tenantId,omitempty"`
	IsGroup          bool   `json:"isGroup,omitempty"`
}

// Activity is the subset of the Bot Framework activity schema the bot reads
// and writes.
type Activity struct {
	Type         string              `json:"type"`
	ID           string              `json:"id,omitempty"`
	Timestamp    *time.Time          `json:"timestamp,omitempty"`
	ServiceURL   string              `json:"serviceUrl,omitempty"`
	ChannelID    string              `json:"channelId,omitempty"`
	From         ChannelAccount      `json:"from"`
	Recipient    ChannelAccount      `json:"recipient"`
	Conversation ConversationAccount `json:"conversation"`
	Text         string              `json:"text,omitempty"`
	TextFormat   string              `json:"textFormat,omitempty"`
	Value        json.RawMessage     `json:"value,omitempty"`
	Attachments  []cards.Attachment  `json:"attachments,omitempty"`
	ReplyToID    string              `json:"replyToId,omitempty"`
	DeliveryMode string              `json:"deliveryMode,omitempty"`
}

// Reference captures where the activity came from, from the bot's point of
// view.
func (a Activity) Reference() ConversationReference {
	return ConversationReference{
		ConversationID: a.Conversation.ID,
		ServiceURL:     a.ServiceURL,
		ChannelID:      a.ChannelID,
		BotID:          a.Recipient.ID,
		BotName:        a.Recipient.Name,
		UserID:         a.From.ID,
		UserName:       a.From.Name,
		TenantID:       a.Conversation.TenantID,
	}
}

type NotifyRequest struct {
	ConversationID string `json:"conversationId"`
	Text           string `json:"text"`
}
