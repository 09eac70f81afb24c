package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kev1N916/trial-bot/database"
	"github.com/kev1N916/trial-bot/internal/cards"
	"github.com/kev1N916/trial-bot/internal/dialog"
	"github.com/kev1N916/trial-bot/internal/models"
	"go.uber.org/zap"
)

type Messenger interface {
	SendActivity(ctx context.Context, ref models.ConversationReference, activity models.Activity) error
}

type Handler struct {
	Engine        *dialog.Engine
	Conversations database.ConversationStore
	Messenger     Messenger
}

func (h *Handler) MessagesHandler(c *gin.Context) {
	var activity models.Activity
	if err := c.ShouldBindJSON(&activity); err != nil {
		zap.L().Warn("Could not bind activity payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid activity payload"})
		return
	}
	if activity.Conversation.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Activity has no conversation"})
		return
	}

	ctx := c.Request.Context()
	log := zap.L().With(zap.String("conversationID", activity.Conversation.ID), zap.String("activityType", activity.Type))

	switch activity.Type {
	case models.ActivityTypeConversationUpdate:
		if _, err := h.rememberConversation(ctx, activity); err != nil {
			log.Error("Error saving conversation reference", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save conversation"})
			return
		}
		c.Status(http.StatusOK)

	case models.ActivityTypeMessage:
		ref, err := h.rememberConversation(ctx, activity)
		if err != nil {
			// the turn can still be answered
			log.Error("Error saving conversation reference", zap.Error(err))
		}

		msg := h.Engine.HandleTurn(ctx, dialog.Turn{
			ConversationID: activity.Conversation.ID,
			Text:           activity.Text,
			Value:          activity.Value,
		})
		reply := replyActivity(activity, msg)

		if activity.DeliveryMode == models.DeliveryModeExpectReplies {
			reply.ID = uuid.NewString()
			c.JSON(http.StatusOK, gin.H{"activities": []models.Activity{reply}})
			return
		}

		if err := h.Messenger.SendActivity(ctx, ref, reply); err != nil {
			log.Error("Error sending reply", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send reply"})
			return
		}
		c.Status(http.StatusOK)

	default:
		log.Debug("Ignoring activity")
		c.Status(http.StatusOK)
	}
}

func (h *Handler) NotifyHandler(c *gin.Context) {
	var req models.NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload"})
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	ctx := c.Request.Context()
	activity := models.Activity{Type: models.ActivityTypeMessage, Text: req.Text, TextFormat: "markdown"}

	if req.ConversationID != "" {
		ref, err := h.Conversations.Get(ctx, req.ConversationID)
		if errors.Is(err, database.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown conversation"})
			return
		}
		if err != nil {
			zap.L().Error("Error loading conversation reference", zap.String("conversationID", req.ConversationID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load conversation"})
			return
		}
		if ref.Muted {
			c.JSON(http.StatusConflict, gin.H{"error": "Notifications are cancelled for this conversation"})
			return
		}
		if err := h.Messenger.SendActivity(ctx, ref, activity); err != nil {
			zap.L().Error("Error sending proactive message", zap.String("conversationID", ref.ConversationID), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send message"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"sent": 1, "failed": 0})
		return
	}

	refs, err := h.Conversations.List(ctx)
	if err != nil {
		zap.L().Error("Error listing conversation references", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list conversations"})
		return
	}

	sent, failed := 0, 0
	for _, ref := range refs {
		if ref.Muted {
			continue
		}
		if err := h.Messenger.SendActivity(ctx, ref, activity); err != nil {
			zap.L().Error("Error sending proactive message", zap.String("conversationID", ref.ConversationID), zap.Error(err))
			failed++
			continue
		}
		sent++
	}
	zap.L().Info("Broadcast notification", zap.Int("sent", sent), zap.Int("failed", failed))

	c.JSON(http.StatusOK, gin.H{"sent": sent, "failed": failed})
}

func (h *Handler) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// rememberConversation upserts the activity's conversation reference while
// keeping the stored notification setting.
func (h *Handler) rememberConversation(ctx context.Context, activity models.Activity) (models.ConversationReference, error) {
	ref := activity.Reference()

	existing, err := h.Conversations.Get(ctx, ref.ConversationID)
	switch {
	case err == nil:
		ref.Muted = existing.Muted
	case !errors.Is(err, database.ErrConversationNotFound):
		return ref, err
	}

	return ref, h.Conversations.Save(ctx, ref)
}

func replyActivity(in models.Activity, msg dialog.Message) models.Activity {
	reply := models.Activity{
		Type:         models.ActivityTypeMessage,
		ServiceURL:   in.ServiceURL,
		ChannelID:    in.ChannelID,
		From:         in.Recipient,
		Recipient:    in.From,
		Conversation: in.Conversation,
		Text:         msg.Text,
		ReplyToID:    in.ID,
	}
	if msg.Text != "" {
		reply.TextFormat = "markdown"
	}
	if msg.Card != nil {
		reply.Attachments = []cards.Attachment{msg.Card.Attachment()}
	}
	return reply
}
