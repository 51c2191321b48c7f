package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	anthropicDefaultBaseURL   = "https://api.anthropic.com/v1"
	anthropicMessagesEndpoint = "/messages"

	// anthropicVersion pins the Messages API wire format.
	anthropicVersion = "2023-06-01"
)

// AnthropicClient talks to the Anthropic Messages API.
type AnthropicClient struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
	retry      retryPolicy
}

// NewAnthropic creates an Anthropic client.
func NewAnthropic(cfg Config, opts ...Option) *AnthropicClient {
	o := buildOptions(opts)
	baseURL := o.baseURL
	if baseURL == "" {
		baseURL = anthropicDefaultBaseURL
	}
	return &AnthropicClient{
		cfg:        cfg,
		baseURL:    baseURL,
		httpClient: o.httpClient,
		retry:      newRetryPolicy(ProviderAnthropic, cfg.MaxRetries, o.backoffBase),
	}
}

// Name implements Provider.
func (c *AnthropicClient) Name() string { return ProviderAnthropic }

func (c *AnthropicClient) String() string {
	return fmt.Sprintf("ANTHROPIC Provider (model: %s)", c.cfg.Model)
}

type anthropicRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	System      string    `json:"system,omitempty"`
	MaxTokens   int       `json:"max_tokens"` // required by the API on every request
	Temperature float64   `json:"temperature"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// splitSystemPrompt extracts the first system message for the top-level
// system field. The Messages API does not accept role "system" inline.
// Remaining messages keep their original order.
func splitSystemPrompt(messages []Message) (system string, rest []Message) {
	rest = make([]Message, 0, len(messages))
	found := false
	for _, m := range messages {
		if !found && m.Role == RoleSystem {
			system = m.Content
			found = true
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}

// Chat implements Provider.
func (c *AnthropicClient) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	temperature, maxTokens := resolveOverrides(c.cfg, opts)
	system, rest := splitSystemPrompt(messages)
	req := anthropicRequest{
		Model:       c.cfg.Model,
		Messages:    rest,
		System:      system,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	return c.retry.run(ctx, func(ctx context.Context) (*Response, error) {
		return c.chatOnce(ctx, req)
	})
}

func (c *AnthropicClient) chatOnce(ctx context.Context, req anthropicRequest) (*Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &Error{Kind: KindInvalidRequest, Provider: ProviderAnthropic, Message: "encode request: " + err.Error(), Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+anthropicMessagesEndpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{Kind: KindInvalidRequest, Provider: ProviderAnthropic, Message: "build request: " + err.Error(), Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	// Anthropic authenticates via x-api-key, not a Bearer token.
	httpReq.Header.Set("x-api-key", c.cfg.APIKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &Error{Kind: KindConnection, Provider: ProviderAnthropic, Message: "request failed: " + err.Error(), Err: err}
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBodySize))
	if err != nil {
		return nil, &Error{Kind: KindConnection, Provider: ProviderAnthropic, Message: "read response: " + err.Error(), Err: err}
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, classifyStatus(ProviderAnthropic, res.StatusCode, body)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &Error{Kind: KindConnection, Provider: ProviderAnthropic, Message: "decode response: " + err.Error(), Err: err}
	}

	content := ""
	for _, block := range parsed.Content {
		if block.Type == "text" {
			content = block.Text
			break
		}
	}

	return &Response{
		Content:      content,
		InputTokens:  parsed.Usage.InputTokens,
		OutputTokens: parsed.Usage.OutputTokens,
		Model:        parsed.Model,
		FinishReason: parsed.StopReason,
	}, nil
}

// CountTokens implements Provider. Anthropic publishes no tokenizer, so
// the estimate is always length-based.
func (c *AnthropicClient) CountTokens(text string) int {
	return approxTokens(text)
}

// Close implements Provider. Idle connections are released; calling
// Close again is a no-op.
func (c *AnthropicClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
