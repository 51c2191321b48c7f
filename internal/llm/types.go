// Package llm implements the chat clients for the supported LLM backends.
//
// FILES:
//   - types.go:     Provider contract and shared request/response types
//   - errors.go:    Error taxonomy and HTTP status classification
//   - retry.go:     Retry loop with exponential backoff
//   - openai.go:    OpenAI chat-completions client
//   - anthropic.go: Anthropic messages client
//   - tokens.go:    Approximate token counting
package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Message roles. The wire format is identical for both backends.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is a single role/content pair in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response is the normalized result of one successful chat call.
// Model is the name reported by the backend, which may be a dated
// variant of the requested model.
type Response struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
}

func (r *Response) String() string {
	return fmt.Sprintf("Response(tokens: %d->%d, model: %s)", r.InputTokens, r.OutputTokens, r.Model)
}

// ChatOptions overrides the client's configured sampling parameters
// for a single call. Nil fields keep the configured values.
type ChatOptions struct {
	Temperature *float64
	MaxTokens   *int
}

// Provider is the contract every backend client satisfies.
type Provider interface {
	// Chat sends the full conversation and returns the assistant reply.
	// Transient failures are retried internally; see retry.go.
	Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error)

	// CountTokens estimates the token count of text. Local estimation
	// only, not billing-grade.
	CountTokens(text string) int

	// Name returns the provider identifier ("openai" or "anthropic").
	Name() string

	// Close releases underlying connections. Safe to call more than once.
	Close() error
}

// Config holds the constructor-supplied tuple shared by both clients.
type Config struct {
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	MaxRetries  int
}

// clientOptions holds optional construction knobs.
type clientOptions struct {
	httpClient  *http.Client
	baseURL     string
	backoffBase time.Duration
}

// Option configures a client at construction.
type Option func(*clientOptions)

// WithHTTPClient replaces the default HTTP client. Useful for injecting
// custom timeouts, transports, or test doubles.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

// WithBaseURL overrides the API base URL. Use when targeting a proxy or
// a local testing endpoint.
func WithBaseURL(url string) Option {
	return func(o *clientOptions) { o.baseURL = url }
}

// WithBackoffBase changes the backoff time unit (default one second).
// Tests shrink this so retry paths run in microseconds.
func WithBackoffBase(d time.Duration) Option {
	return func(o *clientOptions) { o.backoffBase = d }
}

func buildOptions(opts []Option) clientOptions {
	o := clientOptions{
		backoffBase: time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	return o
}

// defaultRequestTimeout bounds a single attempt. A hung upstream call
// otherwise blocks the session until the OS transport gives up.
const defaultRequestTimeout = 120 * time.Second

// resolveOverrides applies per-call overrides on top of the configured values.
func resolveOverrides(cfg Config, opts *ChatOptions) (temperature float64, maxTokens int) {
	temperature = cfg.Temperature
	maxTokens = cfg.MaxTokens
	if opts != nil {
		if opts.Temperature != nil {
			temperature = *opts.Temperature
		}
		if opts.MaxTokens != nil {
			maxTokens = *opts.MaxTokens
		}
	}
	return temperature, maxTokens
}
