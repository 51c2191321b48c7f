package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/TalhaRana01/AI-Assistant-Pro-with-CLI/internal/cli"
	"github.com/TalhaRana01/AI-Assistant-Pro-with-CLI/internal/session"
)

const historyFileName = ".ai_assistant_history"

// runREPL drives the interactive loop until /quit, EOF, or the cost
// limit. Returns the process exit code.
func runREPL(sess *session.Controller) int {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := loadHistory(line)
	defer saveHistory(line, historyPath)

	printBanner(sess)

	for {
		input, err := line.Prompt("You: ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Println("\nInterrupted. Use /quit to exit gracefully.")
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Println("\nGoodbye!")
				return 0
			}
			fmt.Fprintf(os.Stderr, "Input error: %v\n", err)
			return 1
		}

		cmd := cli.Parse(input)
		if cmd.Action != cli.ActionEmpty {
			line.AppendHistory(strings.TrimSpace(input))
		}

		switch cmd.Action {
		case cli.ActionEmpty:
			continue

		case cli.ActionHelp:
			fmt.Println()
			fmt.Println(cli.HelpText)
			fmt.Println()

		case cli.ActionClear:
			sess.Conversation().Clear()
			fmt.Println("\nConversation history cleared.")

		case cli.ActionQuit:
			fmt.Println("\nGoodbye! Thanks for using AI Assistant.")
			return 0

		case cli.ActionCost:
			fmt.Println()
			fmt.Println(sess.Costs().Summary())
			fmt.Println()

		case cli.ActionHistory:
			printHistory(sess)

		case cli.ActionModel:
			switchProvider(sess, cmd.Arg)

		case cli.ActionUnknown:
			fmt.Printf("\nUnknown command: %s (try /help)\n\n", cmd.Raw)

		case cli.ActionMessage:
			if done := sendMessage(sess, cmd.Raw); done {
				return 1
			}
		}
	}
}

// sendMessage routes one chat message. Returns true when the loop must
// stop (cost limit reached).
func sendMessage(sess *session.Controller, text string) bool {
	fmt.Println("\nThinking...")

	reply, err := sess.Send(context.Background(), text)
	if err != nil {
		var limitErr *session.CostLimitError
		if errors.As(err, &limitErr) {
			fmt.Printf("\nCost limit reached (total $%.6f). Ending session.\n", limitErr.Total)
			return true
		}
		fmt.Printf("\nError: %v\nPlease try again or use /quit to exit.\n\n", err)
		return false
	}

	fmt.Printf("\nAssistant: %s\n\n", reply)

	if sess.Costs().ShouldWarn() {
		fmt.Printf("Cost warning: total is $%.6f\n\n", sess.Costs().TotalCost())
	}
	return false
}

func switchProvider(sess *session.Controller, name string) {
	if name == "" {
		fmt.Println("\nUsage: /model <openai|anthropic>")
		return
	}
	fmt.Printf("\nSwitching to %s...\n", strings.ToUpper(name))
	if err := sess.Switch(name); err != nil {
		fmt.Printf("Error: %v\n\n", err)
		return
	}
	fmt.Printf("Now using %s (model: %s)\n\n", strings.ToUpper(name), sess.Model())
}

func printHistory(sess *session.Controller) {
	messages := sess.Conversation().Messages()
	if len(messages) == 0 {
		fmt.Println("\nNo conversation history yet.")
		return
	}

	divider := strings.Repeat("=", 60)
	fmt.Println("\nConversation History:")
	fmt.Println(divider)
	for _, m := range messages {
		content := m.Content
		if len(content) > 100 {
			content = content[:100] + "..."
		}
		fmt.Printf("%s: %s\n", strings.ToUpper(m.Role), content)
	}
	fmt.Println(divider)
	fmt.Println()
}

func printBanner(sess *session.Controller) {
	divider := strings.Repeat("=", 70)
	fmt.Println(divider)
	fmt.Println("AI ASSISTANT - Multi-Provider CLI")
	fmt.Println(divider)
	fmt.Printf("Connected to %s (model: %s)\n", strings.ToUpper(sess.ProviderName()), sess.Model())
	fmt.Println("Type /help for available commands, /quit to exit")
	fmt.Println(divider)
	fmt.Println()
}

// loadHistory reads the liner history file, returning its path for the
// matching save at exit. Input history is REPL convenience only; the
// conversation itself is never persisted.
func loadHistory(line *liner.State) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(home, historyFileName)
	if f, err := os.Open(path); err == nil {
		_, _ = line.ReadHistory(f)
		_ = f.Close()
	}
	return path
}

func saveHistory(line *liner.State, path string) {
	if path == "" {
		return
	}
	f, err := os.Create(path)
	if err != nil {
		return
	}
	_, _ = line.WriteHistory(f)
	_ = f.Close()
}
