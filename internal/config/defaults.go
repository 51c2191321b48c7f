// Package config - defaults.go centralizes default values.
//
// DESIGN: Any default that appears in more than one place is defined
// here so it stays auditable.
package config

// =============================================================================
// TOKEN ESTIMATION
// =============================================================================

// TokenEstimateRatio is the approximate number of characters per token.
// Used for rough token counting when exact counts aren't available.
const TokenEstimateRatio = 4

// =============================================================================
// PROVIDER DEFAULTS
// =============================================================================

// DefaultProvider is used when DEFAULT_PROVIDER is unset.
const DefaultProvider = "openai"

// DefaultOpenAIModel is the OpenAI model requested for chats.
const DefaultOpenAIModel = "gpt-4o-mini"

// DefaultAnthropicModel is the Anthropic model requested for chats.
const DefaultAnthropicModel = "claude-3-5-haiku-20241022"

// DefaultTemperature is the sampling temperature.
const DefaultTemperature = 0.7

// DefaultMaxTokens caps the response length.
const DefaultMaxTokens = 1000

// DefaultMaxRetries is the per-request attempt cap.
const DefaultMaxRetries = 3

// =============================================================================
// COST THRESHOLDS
// =============================================================================

// DefaultCostWarningThreshold is the session cost (USD) at which
// warnings start.
const DefaultCostWarningThreshold = 0.10

// DefaultCostLimitThreshold is the session cost (USD) at which further
// sends are refused.
const DefaultCostLimitThreshold = 1.00

// =============================================================================
// MISC
// =============================================================================

// DefaultLogLevel for the console logger.
const DefaultLogLevel = "info"

// DefaultSystemPrompt seeds every conversation.
const DefaultSystemPrompt = "You are a helpful AI assistant. Be concise and friendly."
