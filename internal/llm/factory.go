package llm

import (
	"errors"
	"fmt"
)

// Provider identifiers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// ErrUnknownProvider is returned by New for unrecognized provider names.
var ErrUnknownProvider = errors.New("unknown provider")

// IsSupported reports whether name is a recognized provider identifier.
func IsSupported(name string) bool {
	return name == ProviderOpenAI || name == ProviderAnthropic
}

// New constructs the client for the named provider.
func New(name string, cfg Config, opts ...Option) (Provider, error) {
	switch name {
	case ProviderOpenAI:
		return NewOpenAI(cfg, opts...), nil
	case ProviderAnthropic:
		return NewAnthropic(cfg, opts...), nil
	default:
		return nil, fmt.Errorf("%w %q: must be %q or %q", ErrUnknownProvider, name, ProviderOpenAI, ProviderAnthropic)
	}
}
