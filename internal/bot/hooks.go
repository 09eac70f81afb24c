// Package bot connects the dialog engine to persistence and the agent.
package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/kev1N916/trial-bot/database"
	"github.com/kev1N916/trial-bot/integrations"
	"github.com/kev1N916/trial-bot/internal/dialog"
	"github.com/kev1N916/trial-bot/internal/models"
	"go.uber.org/zap"
)

type SprintRepository interface {
	SaveSprint(ctx context.Context, cfg models.SprintConfig) error
	GetSprint(ctx context.Context, conversationID string) (models.SprintConfig, error)
}

type AgentNotifier interface {
	NotifyPrompt(ctx context.Context, msg integrations.AgentMessage) error
}

type SprintCalendar interface {
	UpsertSprintEvent(ctx context.Context, sprint models.SprintConfig) (string, error)
}

// Hooks implements dialog.PromptForwarder and dialog.Observer. Calendar is
// optional.
type Hooks struct {
	Sprints       SprintRepository
	Conversations database.ConversationStore
	Agent         AgentNotifier
	Calendar      SprintCalendar
}

var (
	_ dialog.PromptForwarder = (*Hooks)(nil)
	_ dialog.Observer        = (*Hooks)(nil)
)

func (h *Hooks) ForwardPrompt(ctx context.Context, conversationID, prompt string) error {
	msg := integrations.AgentMessage{ConversationID: conversationID, Prompt: prompt}

	sprint, err := h.Sprints.GetSprint(ctx, conversationID)
	switch {
	case err == nil:
		msg.SprintID = sprint.SprintID
		msg.BoardID = sprint.BoardID
	case errors.Is(err, database.ErrSprintNotConfigured):
		zap.L().Debug("Forwarding prompt without a configured sprint", zap.String("conversationID", conversationID))
	default:
		return err
	}

	return h.Agent.NotifyPrompt(ctx, msg)
}

func (h *Hooks) SprintConfigured(ctx context.Context, conversationID string, info dialog.JiraInformation) error {
	sprint := models.SprintConfig{ConversationID: conversationID}

	existing, err := h.Sprints.GetSprint(ctx, conversationID)
	switch {
	case err == nil:
		sprint = existing
	case !errors.Is(err, database.ErrSprintNotConfigured):
		return err
	}

	sprint.SprintID = info.SprintID
	sprint.BoardID = info.BoardID
	sprint.SprintName = info.SprintName
	sprint.SprintKey = info.SprintKey

	if h.Calendar != nil {
		eventID, err := h.Calendar.UpsertSprintEvent(ctx, sprint)
		if err != nil {
			zap.L().Warn("Failed to publish sprint to calendar", zap.String("conversationID", conversationID), zap.Error(err))
		} else {
			sprint.CalendarEventID = eventID
		}
	}

	if err := h.Sprints.SaveSprint(ctx, sprint); err != nil {
		return err
	}
	zap.L().Info("Sprint configured", zap.String("conversationID", conversationID), zap.String("sprintID", sprint.SprintID), zap.String("boardID", sprint.BoardID))

	// configuring a sprint turns notifications back on
	return h.setMuted(ctx, conversationID, false)
}

func (h *Hooks) NotificationsCancelled(ctx context.Context, conversationID string) error {
	if err := h.setMuted(ctx, conversationID, true); err != nil {
		return err
	}
	zap.L().Info("Notifications cancelled", zap.String("conversationID", conversationID))
	return nil
}

func (h *Hooks) setMuted(ctx context.Context, conversationID string, muted bool) error {
	ref, err := h.Conversations.Get(ctx, conversationID)
	if errors.Is(err, database.ErrConversationNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if ref.Muted == muted {
		return nil
	}
	ref.Muted = muted
	if err := h.Conversations.Save(ctx, ref); err != nil {
		return fmt.Errorf("failed to update notification setting: %w", err)
	}
	return nil
}
