// Package cards holds the Adaptive Card documents the bot sends.
package cards

const (
	ContentType = "application/vnd.microsoft.card.adaptive"
	schemaURL   = "http://adaptivecards.io/schemas/adaptive-card.json"
	version     = "1.4"
)

// Submission discriminants written into the data of each card's submit
// action.
const (
	TypeJiraInformation    = "jiraInformation"
	TypePrompt             = "prompt"
	TypeCancelNotification = "cancelNotification"
)

type Card struct {
	Type    string    `json:"type"`
	Schema  string    `json:"$schema"`
	Version string    `json:"version"`
	Body    []Element `json:"body"`
	Actions []Action  `json:"actions,omitempty"`
}

// Element covers the TextBlock, Input.Text and Input.ChoiceSet elements.
type Element struct {
	Type        string   `json:"type"`
	ID          string   `json:"id,omitempty"`
	Text        string   `json:"text,omitempty"`
	Size        string   `json:"size,omitempty"`
	Weight      string   `json:"weight,omitempty"`
	Wrap        bool     `json:"wrap,omitempty"`
	Label       string   `json:"label,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	IsRequired  bool     `json:"isRequired,omitempty"`
	ErrorMsg    string   `json:"errorMessage,omitempty"`
	IsMultiline bool     `json:"isMultiline,omitempty"`
	Style       string   `json:"style,omitempty"`
	Value       string   `json:"value,omitempty"`
	Choices     []Choice `json:"choices,omitempty"`
}

type Choice struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

type Action struct {
	Type  string         `json:"type"`
	Title string         `json:"title"`
	Data  map[string]any `json:"data,omitempty"`
}

type Attachment struct {
	ContentType string `json:"contentType"`
	Content     Card   `json:"content"`
}

func New(body []Element, actions ...Action) Card {
	return Card{
		Type:    "AdaptiveCard",
		Schema:  schemaURL,
		Version: version,
		Body:    body,
		Actions: actions,
	}
}

func (c Card) Attachment() Attachment {
	return Attachment{ContentType: ContentType, Content: c}
}

// SubmitType returns the discriminant carried by the card's submit action.
func (c Card) SubmitType() string {
	for _, a := range c.Actions {
		if a.Type != "Action.Submit" {
			continue
		}
		if t, ok := a.Data["type"].(string); ok {
			return t
		}
	}
	return ""
}

func title(text string) Element {
	return Element{Type: "TextBlock", Text: text, Size: "Large", Weight: "Bolder", Wrap: true}
}

func paragraph(text string) Element {
	return Element{Type: "TextBlock", Text: text, Wrap: true}
}

func submit(label, submissionType string) Action {
	return Action{Type: "Action.Submit", Title: label, Data: map[string]any{"type": submissionType}}
}
