// Package session wires one provider client, the conversation, and the
// cost ledger into a single chat session.
//
// DESIGN: The controller serializes Send/Switch/Close behind one mutex;
// only one request is ever in flight. The logger is injected at
// construction — there is no package-level logger. Two structured
// events are emitted: api_call after every successful send, and
// error_event on exceptional paths.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/TalhaRana01/AI-Assistant-Pro-with-CLI/internal/config"
	"github.com/TalhaRana01/AI-Assistant-Pro-with-CLI/internal/conversation"
	"github.com/TalhaRana01/AI-Assistant-Pro-with-CLI/internal/costcontrol"
	"github.com/TalhaRana01/AI-Assistant-Pro-with-CLI/internal/llm"
)

// ErrNotInitialized is returned by Send before any provider is active.
var ErrNotInitialized = errors.New("no active provider: switch to a provider first")

// CostLimitError reports that the session cost limit is reached. It
// carries the total at the time of refusal and halts the interactive loop.
type CostLimitError struct {
	Total float64
}

func (e *CostLimitError) Error() string {
	return fmt.Sprintf("cost limit reached: total $%.6f", e.Total)
}

// providerFactory builds a client for a provider name. Replaced in tests.
type providerFactory func(name string, cfg llm.Config, opts ...llm.Option) (llm.Provider, error)

// Controller routes user messages through the conversation, the active
// provider, and the cost ledger.
type Controller struct {
	mu sync.Mutex

	id  string
	cfg *config.Config
	log zerolog.Logger

	providerName string
	provider     llm.Provider

	conv  *conversation.Conversation
	costs *costcontrol.Tracker

	newProvider providerFactory
	clientOpts  []llm.Option
}

// Option configures a Controller.
type Option func(*Controller)

// WithClientOptions forwards options to every provider client the
// controller constructs (test servers, shortened backoff).
func WithClientOptions(opts ...llm.Option) Option {
	return func(c *Controller) { c.clientOpts = opts }
}

// WithProviderFactory replaces the provider constructor. Tests use this
// to inject stub providers.
func WithProviderFactory(f func(name string, cfg llm.Config, opts ...llm.Option) (llm.Provider, error)) Option {
	return func(c *Controller) { c.newProvider = f }
}

// New creates a session controller. No provider is active until Switch
// is called.
func New(cfg *config.Config, logger zerolog.Logger, opts ...Option) *Controller {
	c := &Controller{
		id:          uuid.NewString(),
		cfg:         cfg,
		conv:        conversation.New(cfg.SystemPrompt),
		costs:       costcontrol.NewTracker(cfg.CostWarningThreshold, cfg.CostLimitThreshold),
		newProvider: llm.New,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logger.With().Str("session_id", c.id).Logger()
	return c
}

// ID returns the session identifier used in log events.
func (c *Controller) ID() string { return c.id }

// ProviderName returns the active provider name, or "" before Switch.
func (c *Controller) ProviderName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.providerName
}

// Model returns the model the active provider is configured for.
func (c *Controller) Model() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.ModelFor(c.providerName)
}

// Conversation exposes the transcript for the REPL (/history, /clear).
func (c *Controller) Conversation() *conversation.Conversation { return c.conv }

// Costs exposes the cost ledger for the REPL (/cost, exit summary).
func (c *Controller) Costs() *costcontrol.Tracker { return c.costs }

// Switch activates the named provider. The previous client is closed
// first, best-effort: close failures are logged and swallowed. Unknown
// names are rejected before the previous client is touched.
func (c *Controller) Switch(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !llm.IsSupported(name) {
		err := fmt.Errorf("%w %q", llm.ErrUnknownProvider, name)
		c.logError("configuration", err, "switch provider")
		return err
	}

	if c.provider != nil {
		if err := c.provider.Close(); err != nil {
			c.logError("connection", err, "close previous provider")
		}
		c.provider = nil
		c.providerName = ""
	}

	clientCfg := llm.Config{
		APIKey:      c.cfg.APIKeyFor(name),
		Model:       c.cfg.ModelFor(name),
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
		MaxRetries:  c.cfg.MaxRetries,
	}
	p, err := c.newProvider(name, clientCfg, c.clientOpts...)
	if err != nil {
		c.logError("configuration", err, "construct provider")
		return err
	}

	c.provider = p
	c.providerName = name
	c.log.Info().Str("provider", name).Str("model", clientCfg.Model).Msg("provider activated")
	return nil
}

// Send routes one user message through the active provider and returns
// the assistant reply.
//
// The cost-limit gate runs before the user message is appended, so a
// refused send leaves the conversation unchanged. After the gate, the
// user message is appended before the provider call and stays in the
// transcript even when the call fails; only the assistant reply is
// conditional on success.
func (c *Controller) Send(ctx context.Context, userMessage string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.provider == nil {
		return "", ErrNotInitialized
	}
	if c.costs.ShouldStop() {
		err := &CostLimitError{Total: c.costs.TotalCost()}
		c.logError("cost_limit", err, "send refused")
		return "", err
	}

	c.conv.AddUser(userMessage)

	resp, err := c.provider.Chat(ctx, c.conv.Messages(), nil)
	if err != nil {
		c.logError(errorType(err), err, "chat request")
		return "", err
	}

	c.conv.AddAssistant(resp.Content)

	// Cost is keyed on the model the backend reports, not the one
	// requested: backends substitute dated variants.
	cost := c.costs.Record(c.provider.Name(), resp.Model, resp.InputTokens, resp.OutputTokens)

	c.log.Info().
		Str("event", "api_call").
		Str("provider", c.provider.Name()).
		Str("model", resp.Model).
		Int("input_tokens", resp.InputTokens).
		Int("output_tokens", resp.OutputTokens).
		Float64("cost", cost).
		Msg("api call complete")

	if c.costs.ShouldWarn() {
		c.log.Warn().Float64("total_cost", c.costs.TotalCost()).Msg("cost warning threshold reached")
	}

	return resp.Content, nil
}

// Close releases the active provider. Failures are logged, never
// returned as fatal: cleanup runs during best-effort teardown.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.provider == nil {
		return nil
	}
	if err := c.provider.Close(); err != nil {
		c.logError("connection", err, "close provider")
	}
	c.provider = nil
	c.providerName = ""
	return nil
}

// logError emits the structured error event {error_type, message, context}.
func (c *Controller) logError(errorType string, err error, context string) {
	c.log.Error().
		Str("event", "error_event").
		Str("error_type", errorType).
		Str("message", err.Error()).
		Str("context", context).
		Msg("session error")
}

// errorType maps an error onto its taxonomy name for log events.
func errorType(err error) string {
	var limitErr *CostLimitError
	switch {
	case errors.Is(err, ErrNotInitialized):
		return "not_initialized"
	case errors.As(err, &limitErr):
		return "cost_limit"
	case errors.Is(err, llm.ErrUnknownProvider):
		return "configuration"
	}
	if kind, ok := llm.KindOf(err); ok {
		return string(kind)
	}
	return "unknown"
}
