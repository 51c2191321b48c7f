package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkoukk/tiktoken-go"
)

const (
	openaiDefaultBaseURL = "https://api.openai.com/v1"
	openaiChatEndpoint   = "/chat/completions"

	// openaiFallbackEncoding is used when tiktoken has no entry for the
	// configured model.
	openaiFallbackEncoding = "cl100k_base"
)

// maxResponseBodySize caps how much of an upstream response is read.
const maxResponseBodySize = 10 * 1024 * 1024

// OpenAIClient talks to the OpenAI chat-completions API.
type OpenAIClient struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
	retry      retryPolicy

	// encoding is nil when no tokenizer could be initialized; token
	// counting then falls back to the length heuristic.
	encoding *tiktoken.Tiktoken
}

// NewOpenAI creates an OpenAI client.
func NewOpenAI(cfg Config, opts ...Option) *OpenAIClient {
	o := buildOptions(opts)
	baseURL := o.baseURL
	if baseURL == "" {
		baseURL = openaiDefaultBaseURL
	}

	encoding, err := tiktoken.EncodingForModel(cfg.Model)
	if err != nil {
		encoding, _ = tiktoken.GetEncoding(openaiFallbackEncoding)
	}

	return &OpenAIClient{
		cfg:        cfg,
		baseURL:    baseURL,
		httpClient: o.httpClient,
		retry:      newRetryPolicy(ProviderOpenAI, cfg.MaxRetries, o.backoffBase),
		encoding:   encoding,
	}
}

// Name implements Provider.
func (c *OpenAIClient) Name() string { return ProviderOpenAI }

func (c *OpenAIClient) String() string {
	return fmt.Sprintf("OPENAI Provider (model: %s)", c.cfg.Model)
}

type openaiChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type openaiChatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Chat implements Provider. OpenAI accepts system messages inline, so
// the conversation is sent unmodified.
func (c *OpenAIClient) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	temperature, maxTokens := resolveOverrides(c.cfg, opts)
	req := openaiChatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	return c.retry.run(ctx, func(ctx context.Context) (*Response, error) {
		return c.chatOnce(ctx, req)
	})
}

func (c *OpenAIClient) chatOnce(ctx context.Context, req openaiChatRequest) (*Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &Error{Kind: KindInvalidRequest, Provider: ProviderOpenAI, Message: "encode request: " + err.Error(), Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+openaiChatEndpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{Kind: KindInvalidRequest, Provider: ProviderOpenAI, Message: "build request: " + err.Error(), Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &Error{Kind: KindConnection, Provider: ProviderOpenAI, Message: "request failed: " + err.Error(), Err: err}
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBodySize))
	if err != nil {
		return nil, &Error{Kind: KindConnection, Provider: ProviderOpenAI, Message: "read response: " + err.Error(), Err: err}
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, classifyStatus(ProviderOpenAI, res.StatusCode, body)
	}

	var parsed openaiChatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &Error{Kind: KindConnection, Provider: ProviderOpenAI, Message: "decode response: " + err.Error(), Err: err}
	}
	if len(parsed.Choices) == 0 {
		return nil, &Error{Kind: KindConnection, Provider: ProviderOpenAI, Message: "response contained no choices"}
	}

	choice := parsed.Choices[0]
	resp := &Response{
		Content:      choice.Message.Content,
		Model:        parsed.Model,
		FinishReason: choice.FinishReason,
	}
	if parsed.Usage != nil {
		resp.InputTokens = parsed.Usage.PromptTokens
		resp.OutputTokens = parsed.Usage.CompletionTokens
	}
	return resp, nil
}

// CountTokens implements Provider using tiktoken, with a length
// heuristic when no encoding is available.
func (c *OpenAIClient) CountTokens(text string) int {
	if c.encoding == nil {
		return approxTokens(text)
	}
	return len(c.encoding.Encode(text, nil, nil))
}

// Close implements Provider. Idle connections are released; calling
// Close again is a no-op.
func (c *OpenAIClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
