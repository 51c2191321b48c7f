// Package conversation keeps the ordered dialogue transcript.
//
// DESIGN: Messages are immutable once appended and their order is the
// exact wire order sent to a backend. A system prompt supplied at
// construction is pinned at position 0 and survives Clear.
package conversation

import (
	"github.com/TalhaRana01/AI-Assistant-Pro-with-CLI/internal/llm"
)

// Conversation is an ordered log of role-tagged messages. It is owned
// by a single session controller and is not safe for concurrent use.
type Conversation struct {
	systemPrompt string
	messages     []llm.Message
}

// New creates a conversation. A non-empty systemPrompt becomes message 0.
func New(systemPrompt string) *Conversation {
	c := &Conversation{systemPrompt: systemPrompt}
	if systemPrompt != "" {
		c.AddSystem(systemPrompt)
	}
	return c
}

// AddUser appends a user message.
func (c *Conversation) AddUser(content string) {
	c.messages = append(c.messages, llm.Message{Role: llm.RoleUser, Content: content})
}

// AddAssistant appends an assistant message.
func (c *Conversation) AddAssistant(content string) {
	c.messages = append(c.messages, llm.Message{Role: llm.RoleAssistant, Content: content})
}

// AddSystem appends a system message.
func (c *Conversation) AddSystem(content string) {
	c.messages = append(c.messages, llm.Message{Role: llm.RoleSystem, Content: content})
}

// Messages returns the transcript in wire format, in order. The slice
// is a copy; appending to the conversation later does not alias it.
func (c *Conversation) Messages() []llm.Message {
	return append([]llm.Message(nil), c.messages...)
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// Clear resets the transcript. A conversation constructed with a system
// prompt keeps exactly that one message; otherwise the result is empty.
func (c *Conversation) Clear() {
	if c.systemPrompt != "" {
		c.messages = []llm.Message{{Role: llm.RoleSystem, Content: c.systemPrompt}}
		return
	}
	c.messages = nil
}

// LastUser returns the most recent user message.
func (c *Conversation) LastUser() (string, bool) {
	return c.lastOfRole(llm.RoleUser)
}

// LastAssistant returns the most recent assistant message.
func (c *Conversation) LastAssistant() (string, bool) {
	return c.lastOfRole(llm.RoleAssistant)
}

func (c *Conversation) lastOfRole(role string) (string, bool) {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == role {
			return c.messages[i].Content, true
		}
	}
	return "", false
}
