package dialog

import (
	"strings"

	json "github.com/goccy/go-json"

	"github.com/kev1N916/trial-bot/internal/cards"
)

// Submission is the decoded value of a card submit action. The set of
// implementations is closed to this package.
type Submission interface {
	submissionType() string
}

type JiraInformation struct {
	SprintID   string `json:"sprintId"`
	BoardID    string `json:"boardId"`
	SprintName string `json:"sprintName,omitempty"`
	SprintKey  string `json:"sprintKey,omitempty"`
}

type PromptSubmission struct {
	Prompt string `json:"prompt"`
}

type CancelNotification struct {
	Choice string `json:"choice"`
}

// UnknownSubmission carries any discriminant the bot does not handle,
// including a missing one.
type UnknownSubmission struct {
	Type string
}

func (JiraInformation) submissionType() string    { return cards.TypeJiraInformation }
func (PromptSubmission) submissionType() string   { return cards.TypePrompt }
func (CancelNotification) submissionType() string { return cards.TypeCancelNotification }
func (s UnknownSubmission) submissionType() string {
	return s.Type
}

// Complete reports whether both required identifiers are present.
func (j JiraInformation) Complete() bool {
	return strings.TrimSpace(j.SprintID) != "" && strings.TrimSpace(j.BoardID) != ""
}

// DecodeSubmission turns a raw submit payload into a Submission. Payloads
// that are not JSON objects, or whose fields have the wrong shape, decode
// as UnknownSubmission.
func DecodeSubmission(raw []byte) Submission {
	var header struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &header); err != nil {
		return UnknownSubmission{}
	}

	var (
		s   Submission
		err error
	)
	switch header.Type {
	case cards.TypeJiraInformation:
		var v JiraInformation
		err = json.Unmarshal(raw, &v)
		s = v
	case cards.TypePrompt:
		var v PromptSubmission
		err = json.Unmarshal(raw, &v)
		s = v
	case cards.TypeCancelNotification:
		var v CancelNotification
		err = json.Unmarshal(raw, &v)
		s = v
	default:
		return UnknownSubmission{Type: header.Type}
	}
	if err != nil {
		return UnknownSubmission{Type: header.Type}
	}
	return s
}
