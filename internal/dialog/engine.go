// Package dialog turns one incoming turn into exactly one outgoing message.
package dialog

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kev1N916/trial-bot/internal/cards"
)

const (
	HelpText = "Here is what I can do:\n\n" +
		"- **configure**: set the Jira sprint and board to follow\n" +
		"- **prompt**: send a prompt to the sprint agent\n" +
		"- **cancel**: stop sprint notifications in this conversation\n" +
		"- **help**: show this message"

	MissingJiraFieldsText  = "Please fill in all required fields (Sprint ID and Board ID)."
	PromptSentText         = "Your prompt has been sent to the agent. You will be notified here when it responds."
	AgentUnavailableText   = "Sorry, the agent could not be reached. Please try again later."
	CancelConfirmedText    = "Notifications have been cancelled."
	CancelDeclinedText     = "Okay, notifications were not cancelled."
	CancelInvalidText      = "Please choose Yes or No."
	GenericSubmissionText  = "Thank you for your submission!"
	jiraConfiguredTemplate = "Jira information saved. Sprint ID: %s, Board ID: %s"
)

// Turn is one inbound exchange. Value, when present, is the raw card
// submission and takes precedence over Text.
type Turn struct {
	ConversationID string
	Text           string
	Value          []byte
}

func (t Turn) hasSubmission() bool {
	v := bytes.TrimSpace(t.Value)
	return len(v) > 0 && !bytes.Equal(v, []byte("null"))
}

// Message is the single reply to a turn: text, a card, or both.
type Message struct {
	Text string
	Card *cards.Card
}

// PromptForwarder hands a submitted prompt to the agent.
type PromptForwarder interface {
	ForwardPrompt(ctx context.Context, conversationID, prompt string) error
}

// Observer is told about submissions that change conversation settings.
type Observer interface {
	SprintConfigured(ctx context.Context, conversationID string, info JiraInformation) error
	NotificationsCancelled(ctx context.Context, conversationID string) error
}

type Engine struct {
	forwarder PromptForwarder
	observer  Observer
	logger    *zap.Logger
}

type Option func(*Engine)

func WithForwarder(f PromptForwarder) Option {
	return func(e *Engine) {
		e.forwarder = f
	}
}

func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HandleTurn never fails: every input maps to a user-facing message.
func (e *Engine) HandleTurn(ctx context.Context, turn Turn) Message {
	if turn.hasSubmission() {
		return e.handleSubmission(ctx, turn.ConversationID, DecodeSubmission(turn.Value))
	}
	return e.handleCommand(ParseCommand(turn.Text))
}

func (e *Engine) handleCommand(cmd Command) Message {
	var card cards.Card
	switch cmd {
	case CommandConfigure:
		card = cards.JiraConfiguration()
	case CommandPrompt:
		card = cards.Prompt()
	case CommandCancel:
		card = cards.CancelNotification()
	case CommandHelp:
		return Message{Text: HelpText}
	default:
		return Message{Text: HelpText}
	}
	return Message{Card: &card}
}

func (e *Engine) handleSubmission(ctx context.Context, conversationID string, s Submission) Message {
	log := e.logger.With(zap.String("conversationID", conversationID), zap.String("submissionType", s.submissionType()))

	switch s := s.(type) {
	case JiraInformation:
		if !s.Complete() {
			return Message{Text: MissingJiraFieldsText}
		}
		s.SprintID = strings.TrimSpace(s.SprintID)
		s.BoardID = strings.TrimSpace(s.BoardID)
		if e.observer != nil {
			if err := e.observer.SprintConfigured(ctx, conversationID, s); err != nil {
				log.Error("Failed to record sprint configuration", zap.Error(err))
			}
		}
		return Message{Text: fmt.Sprintf(jiraConfiguredTemplate, s.SprintID, s.BoardID)}

	case PromptSubmission:
		if e.forwarder != nil {
			if err := e.forwarder.ForwardPrompt(ctx, conversationID, s.Prompt); err != nil {
				log.Error("Failed to forward prompt to agent", zap.Error(err))
				return Message{Text: AgentUnavailableText}
			}
		}
		return Message{Text: PromptSentText}

	case CancelNotification:
		switch strings.ToLower(strings.TrimSpace(s.Choice)) {
		case cards.ChoiceYes:
			if e.observer != nil {
				if err := e.observer.NotificationsCancelled(ctx, conversationID); err != nil {
					log.Error("Failed to cancel notifications", zap.Error(err))
				}
			}
			return Message{Text: CancelConfirmedText}
		case cards.ChoiceNo:
			return Message{Text: CancelDeclinedText}
		default:
			return Message{Text: CancelInvalidText}
		}

	case UnknownSubmission:
		log.Debug("Unhandled submission type")
		return Message{Text: GenericSubmissionText}

	default:
		return Message{Text: GenericSubmissionText}
	}
}
