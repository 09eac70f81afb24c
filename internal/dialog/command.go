package dialog

import "strings"

type Command int

const (
	CommandHelp Command = iota
	CommandConfigure
	CommandPrompt
	CommandCancel
)

func (c Command) String() string {
	switch c {
	case CommandConfigure:
		return "configure"
	case CommandPrompt:
		return "prompt"
	case CommandCancel:
		return "cancel"
	default:
		return "help"
	}
}

// ParseCommand maps free text to a command. Unknown and empty text map to
// CommandHelp.
func ParseCommand(text string) Command {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "configure":
		return CommandConfigure
	case "prompt":
		return CommandPrompt
	case "cancel":
		return CommandCancel
	default:
		return CommandHelp
	}
}
