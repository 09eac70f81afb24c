package cards

// Input ids. They become the keys of the submission payload.
const (
	InputSprintID   = "sprintId"
	InputBoardID    = "boardId"
	InputSprintName = "sprintName"
	InputSprintKey  = "sprintKey"
	InputPrompt     = "prompt"
	InputChoice     = "choice"
)

const (
	ChoiceYes = "yes"
	ChoiceNo  = "no"
)

func JiraConfiguration() Card {
	return New([]Element{
		title("Configure Jira"),
		paragraph("Tell me which sprint to follow. Sprint ID and Board ID are required."),
		{
			Type:        "Input.Text",
			ID:          InputSprintID,
			Label:       "Sprint ID",
			Placeholder: "e.g. SPRINT-123",
			IsRequired:  true,
			ErrorMsg:    "Sprint ID is required",
		},
		{
			Type:        "Input.Text",
			ID:          InputBoardID,
			Label:       "Board ID",
			Placeholder: "e.g. BOARD-456",
			IsRequired:  true,
			ErrorMsg:    "Board ID is required",
		},
		{
			Type:        "Input.Text",
			ID:          InputSprintName,
			Label:       "Sprint name",
			Placeholder: "Optional",
		},
		{
			Type:        "Input.Text",
			ID:          InputSprintKey,
			Label:       "Sprint key",
			Placeholder: "Optional",
		},
	}, submit("Save", TypeJiraInformation))
}

func Prompt() Card {
	return New([]Element{
		title("Ask the agent"),
		paragraph("Your prompt is passed to the sprint agent together with the configured sprint."),
		{
			Type:        "Input.Text",
			ID:          InputPrompt,
			Label:       "Prompt",
			Placeholder: "What is blocking the current sprint?",
			IsMultiline: true,
			IsRequired:  true,
			ErrorMsg:    "A prompt is required",
		},
	}, submit("Send", TypePrompt))
}

func CancelNotification() Card {
	return New([]Element{
		title("Cancel notifications"),
		paragraph("Do you want to stop receiving sprint notifications in this conversation?"),
		{
			Type:       "Input.ChoiceSet",
			ID:         InputChoice,
			Label:      "Cancel notifications?",
			Style:      "expanded",
			Value:      ChoiceNo,
			IsRequired: true,
			Choices: []Choice{
				{Title: "Yes", Value: ChoiceYes},
				{Title: "No", Value: ChoiceNo},
			},
		},
	}, submit("Confirm", TypeCancelNotification))
}
