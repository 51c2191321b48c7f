// Package cli parses the REPL's slash commands.
package cli

import "strings"

// Action identifies what a line of input asks for.
type Action int

const (
	// ActionMessage routes the raw input to the session as a chat message.
	ActionMessage Action = iota
	// ActionEmpty is blank input; the REPL re-prompts.
	ActionEmpty
	ActionHelp
	ActionClear
	ActionQuit
	// ActionModel switches provider; Arg carries the provider name.
	ActionModel
	ActionCost
	ActionHistory
	// ActionUnknown is a leading-slash input that matches no command.
	ActionUnknown
)

// Command is one parsed line of input.
type Command struct {
	Action Action
	// Arg is the argument for commands that take one (/model <provider>).
	Arg string
	// Raw is the original input, used when Action is ActionMessage.
	Raw string
}

// Parse interprets one line of REPL input. Commands are matched
// case-insensitively; non-slash input is a chat message.
func Parse(input string) Command {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Command{Action: ActionEmpty}
	}
	if !strings.HasPrefix(trimmed, "/") {
		return Command{Action: ActionMessage, Raw: trimmed}
	}

	fields := strings.Fields(strings.ToLower(trimmed))
	switch fields[0] {
	case "/help":
		return Command{Action: ActionHelp}
	case "/clear":
		return Command{Action: ActionClear}
	case "/quit", "/exit":
		return Command{Action: ActionQuit}
	case "/cost":
		return Command{Action: ActionCost}
	case "/history":
		return Command{Action: ActionHistory}
	case "/model":
		arg := ""
		if len(fields) == 2 {
			arg = fields[1]
		}
		return Command{Action: ActionModel, Arg: arg}
	default:
		return Command{Action: ActionUnknown, Raw: trimmed}
	}
}

// HelpText lists the available commands.
const HelpText = `Available Commands:
  /help             - Show this help message
  /clear            - Clear conversation history
  /quit, /exit      - Exit the application
  /model <provider> - Switch provider (openai or anthropic)
  /cost             - Show cost summary
  /history          - Show conversation history`
