package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TalhaRana01/AI-Assistant-Pro-with-CLI/internal/llm"
)

func TestNew_SystemPromptIsMessageZero(t *testing.T) {
	conv := New("You are helpful.")
	require.Equal(t, 1, conv.Len())

	messages := conv.Messages()
	assert.Equal(t, llm.RoleSystem, messages[0].Role)
	assert.Equal(t, "You are helpful.", messages[0].Content)
}

func TestNew_EmptySystemPrompt(t *testing.T) {
	conv := New("")
	assert.Equal(t, 0, conv.Len())
}

func TestMessages_WireOrderRoundTrip(t *testing.T) {
	conv := New("")
	conv.AddUser("Hello!")
	conv.AddAssistant("Hi there.")

	messages := conv.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, llm.Message{Role: "user", Content: "Hello!"}, messages[0])
	assert.Equal(t, llm.Message{Role: "assistant", Content: "Hi there."}, messages[1])
}

func TestMessages_ReturnsCopy(t *testing.T) {
	conv := New("")
	conv.AddUser("one")

	messages := conv.Messages()
	messages[0].Content = "mutated"

	assert.Equal(t, "one", conv.Messages()[0].Content)
}

func TestClear_PreservesSystemPrompt(t *testing.T) {
	conv := New("system prompt here")
	conv.AddUser("question")
	conv.AddAssistant("answer")
	require.Equal(t, 3, conv.Len())

	conv.Clear()
	require.Equal(t, 1, conv.Len())
	messages := conv.Messages()
	assert.Equal(t, llm.RoleSystem, messages[0].Role)
	assert.Equal(t, "system prompt here", messages[0].Content)
}

func TestClear_WithoutSystemPrompt(t *testing.T) {
	conv := New("")
	conv.AddUser("question")

	conv.Clear()
	assert.Equal(t, 0, conv.Len())
}

func TestLastOfRole(t *testing.T) {
	conv := New("sys")

	_, ok := conv.LastUser()
	assert.False(t, ok)
	_, ok = conv.LastAssistant()
	assert.False(t, ok)

	conv.AddUser("first question")
	conv.AddAssistant("first answer")
	conv.AddUser("second question")

	user, ok := conv.LastUser()
	require.True(t, ok)
	assert.Equal(t, "second question", user)

	asst, ok := conv.LastAssistant()
	require.True(t, ok)
	assert.Equal(t, "first answer", asst)
}
