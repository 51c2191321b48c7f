package llm

import (
	"github.com/TalhaRana01/AI-Assistant-Pro-with-CLI/internal/config"
)

// approxTokens estimates a token count from text length alone.
// Used by the Anthropic client (no public tokenizer exists) and as the
// OpenAI fallback when the tokenizer is unavailable.
func approxTokens(text string) int {
	return len(text) / config.TokenEstimateRatio
}
