package session

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TalhaRana01/AI-Assistant-Pro-with-CLI/internal/config"
	"github.com/TalhaRana01/AI-Assistant-Pro-with-CLI/internal/llm"
)

// stubProvider scripts Chat responses without any network.
type stubProvider struct {
	name     string
	response *llm.Response
	err      error

	chatCalls  int
	closeCalls int
	lastSent   []llm.Message
}

func (s *stubProvider) Chat(_ context.Context, messages []llm.Message, _ *llm.ChatOptions) (*llm.Response, error) {
	s.chatCalls++
	s.lastSent = append([]llm.Message(nil), messages...)
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

func (s *stubProvider) CountTokens(text string) int { return len(text) / 4 }
func (s *stubProvider) Name() string                { return s.name }
func (s *stubProvider) Close() error                { s.closeCalls++; return nil }

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.OpenAIAPIKey = "sk-test"
	cfg.AnthropicAPIKey = "sk-ant-test"
	return cfg
}

func newTestController(t *testing.T, cfg *config.Config, stub *stubProvider) *Controller {
	t.Helper()
	return New(cfg, zerolog.Nop(), WithProviderFactory(
		func(name string, _ llm.Config, _ ...llm.Option) (llm.Provider, error) {
			if !llm.IsSupported(name) {
				return nil, llm.ErrUnknownProvider
			}
			stub.name = name
			return stub, nil
		},
	))
}

func okResponse() *llm.Response {
	return &llm.Response{
		Content:      "Hi there!",
		InputTokens:  10,
		OutputTokens: 5,
		Model:        "gpt-4o-mini-2024-07-18",
		FinishReason: "stop",
	}
}

func TestSend_BeforeSwitchFails(t *testing.T) {
	ctrl := newTestController(t, testConfig(), &stubProvider{response: okResponse()})

	_, err := ctrl.Send(context.Background(), "hello")
	require.ErrorIs(t, err, ErrNotInitialized)
}

func TestSend_Success(t *testing.T) {
	stub := &stubProvider{response: okResponse()}
	ctrl := newTestController(t, testConfig(), stub)
	require.NoError(t, ctrl.Switch(llm.ProviderOpenAI))

	reply, err := ctrl.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "Hi there!", reply)

	// Transcript: system prompt, user message, assistant reply.
	messages := ctrl.Conversation().Messages()
	require.Len(t, messages, 3)
	assert.Equal(t, llm.RoleSystem, messages[0].Role)
	assert.Equal(t, "hello", messages[1].Content)
	assert.Equal(t, "Hi there!", messages[2].Content)

	// The provider saw the transcript up to and including the user turn.
	require.Len(t, stub.lastSent, 2)
	assert.Equal(t, "hello", stub.lastSent[1].Content)
}

func TestSend_CostKeyedOnResponseModel(t *testing.T) {
	stub := &stubProvider{response: okResponse()}
	ctrl := newTestController(t, testConfig(), stub)
	require.NoError(t, ctrl.Switch(llm.ProviderOpenAI))

	_, err := ctrl.Send(context.Background(), "hello")
	require.NoError(t, err)

	entries := ctrl.Costs().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "gpt-4o-mini-2024-07-18", entries[0].Model)
	assert.Equal(t, llm.ProviderOpenAI, entries[0].Provider)
	assert.Equal(t, 10, entries[0].InputTokens)
	assert.Equal(t, 5, entries[0].OutputTokens)
}

func TestSend_CostLimitRefusesBeforeAppend(t *testing.T) {
	cfg := testConfig()
	cfg.CostLimitThreshold = 0.0001

	stub := &stubProvider{response: okResponse()}
	ctrl := newTestController(t, cfg, stub)
	require.NoError(t, ctrl.Switch(llm.ProviderOpenAI))

	// Push the ledger past the limit: 10000/5000 gpt-4o-mini tokens
	// cost about $0.0045.
	ctrl.Costs().Record(llm.ProviderOpenAI, "gpt-4o-mini", 10000, 5000)
	before := len(ctrl.Conversation().Messages())

	_, err := ctrl.Send(context.Background(), "one more")
	var limitErr *CostLimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Greater(t, limitErr.Total, 0.0001)

	// The refused message never reached the transcript or the provider.
	assert.Len(t, ctrl.Conversation().Messages(), before)
	assert.Equal(t, 0, stub.chatCalls)
}

func TestSend_ProviderFailureKeepsUserMessage(t *testing.T) {
	stub := &stubProvider{err: &llm.Error{
		Kind:     llm.KindConnection,
		Provider: llm.ProviderOpenAI,
		Message:  "request failed",
	}}
	ctrl := newTestController(t, testConfig(), stub)
	require.NoError(t, ctrl.Switch(llm.ProviderOpenAI))

	_, err := ctrl.Send(context.Background(), "hello")
	require.Error(t, err)
	kind, ok := llm.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, llm.KindConnection, kind)

	// The user turn stays in the transcript; no assistant turn follows.
	messages := ctrl.Conversation().Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, llm.RoleUser, messages[1].Role)

	// Nothing is recorded against the ledger on failure.
	assert.Equal(t, 0, ctrl.Costs().CallCount())
}

func TestSwitch_UnknownProviderKeepsCurrent(t *testing.T) {
	stub := &stubProvider{response: okResponse()}
	ctrl := newTestController(t, testConfig(), stub)
	require.NoError(t, ctrl.Switch(llm.ProviderOpenAI))

	err := ctrl.Switch("gemini")
	require.ErrorIs(t, err, llm.ErrUnknownProvider)

	// The active provider survives a rejected switch untouched.
	assert.Equal(t, llm.ProviderOpenAI, ctrl.ProviderName())
	assert.Equal(t, 0, stub.closeCalls)

	_, err = ctrl.Send(context.Background(), "still here")
	require.NoError(t, err)
}

func TestSwitch_ClosesPreviousProvider(t *testing.T) {
	stub := &stubProvider{response: okResponse()}
	ctrl := newTestController(t, testConfig(), stub)
	require.NoError(t, ctrl.Switch(llm.ProviderOpenAI))
	require.NoError(t, ctrl.Switch(llm.ProviderAnthropic))

	assert.Equal(t, 1, stub.closeCalls)
	assert.Equal(t, llm.ProviderAnthropic, ctrl.ProviderName())
}

func TestSwitch_FactoryErrorLeavesNoProvider(t *testing.T) {
	boom := errors.New("factory exploded")
	ctrl := New(testConfig(), zerolog.Nop(), WithProviderFactory(
		func(string, llm.Config, ...llm.Option) (llm.Provider, error) {
			return nil, boom
		},
	))

	require.ErrorIs(t, ctrl.Switch(llm.ProviderOpenAI), boom)
	assert.Empty(t, ctrl.ProviderName())

	_, err := ctrl.Send(context.Background(), "hello")
	require.ErrorIs(t, err, ErrNotInitialized)
}

func TestClose_IsIdempotent(t *testing.T) {
	stub := &stubProvider{response: okResponse()}
	ctrl := newTestController(t, testConfig(), stub)
	require.NoError(t, ctrl.Switch(llm.ProviderOpenAI))

	require.NoError(t, ctrl.Close())
	require.NoError(t, ctrl.Close())
	assert.Equal(t, 1, stub.closeCalls)
}

func TestID_IsStable(t *testing.T) {
	ctrl := newTestController(t, testConfig(), &stubProvider{})
	assert.NotEmpty(t, ctrl.ID())
	assert.Equal(t, ctrl.ID(), ctrl.ID())
}
