// Settings loading and validation.
//
// DESIGN: Defaults -> optional YAML file -> environment overrides.
// The .env file (if any) is loaded into the environment by cmd before
// Load runs, so OPENAI_API_KEY etc. behave the same whether exported
// or written to .env. Validation happens once, after all sources are
// merged; the rest of the program assumes a valid Config.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds every runtime setting.
type Config struct {
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`

	DefaultProvider string `yaml:"default_provider"`
	OpenAIModel     string `yaml:"openai_model"`
	AnthropicModel  string `yaml:"anthropic_model"`

	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	MaxRetries  int     `yaml:"max_retries"`

	CostWarningThreshold float64 `yaml:"cost_warning_threshold"`
	CostLimitThreshold   float64 `yaml:"cost_limit_threshold"`

	LogLevel     string `yaml:"log_level"`
	SystemPrompt string `yaml:"system_prompt"`
}

// Default returns a Config populated with the built-in defaults.
// API keys have no default.
func Default() *Config {
	return &Config{
		DefaultProvider:      DefaultProvider,
		OpenAIModel:          DefaultOpenAIModel,
		AnthropicModel:       DefaultAnthropicModel,
		Temperature:          DefaultTemperature,
		MaxTokens:            DefaultMaxTokens,
		MaxRetries:           DefaultMaxRetries,
		CostWarningThreshold: DefaultCostWarningThreshold,
		CostLimitThreshold:   DefaultCostLimitThreshold,
		LogLevel:             DefaultLogLevel,
		SystemPrompt:         DefaultSystemPrompt,
	}
}

// Load builds the effective configuration. path names an optional YAML
// file; empty means env-and-defaults only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields from environment variables.
func (c *Config) applyEnv() error {
	setString(&c.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&c.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	setString(&c.OpenAIModel, "OPENAI_MODEL")
	setString(&c.AnthropicModel, "ANTHROPIC_MODEL")
	setString(&c.SystemPrompt, "SYSTEM_PROMPT")

	if v, ok := lookup("DEFAULT_PROVIDER"); ok {
		c.DefaultProvider = strings.ToLower(v)
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		c.LogLevel = strings.ToLower(v)
	}

	if err := setFloat(&c.Temperature, "TEMPERATURE"); err != nil {
		return err
	}
	if err := setInt(&c.MaxTokens, "MAX_TOKENS"); err != nil {
		return err
	}
	if err := setInt(&c.MaxRetries, "MAX_RETRIES"); err != nil {
		return err
	}
	if err := setFloat(&c.CostWarningThreshold, "COST_WARNING_THRESHOLD"); err != nil {
		return err
	}
	return setFloat(&c.CostLimitThreshold, "COST_LIMIT_THRESHOLD")
}

// Validate checks field ranges and allowed values.
func (c *Config) Validate() error {
	switch c.DefaultProvider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("default_provider must be \"openai\" or \"anthropic\", got %q", c.DefaultProvider)
	}
	if c.Temperature < 0.0 || c.Temperature > 2.0 {
		return fmt.Errorf("temperature must be between 0.0 and 2.0, got %g", c.Temperature)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be > 0, got %d", c.MaxTokens)
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("max_retries must be > 0, got %d", c.MaxRetries)
	}
	if c.CostWarningThreshold < 0 {
		return fmt.Errorf("cost_warning_threshold must be >= 0, got %g", c.CostWarningThreshold)
	}
	if c.CostLimitThreshold < 0 {
		return fmt.Errorf("cost_limit_threshold must be >= 0, got %g", c.CostLimitThreshold)
	}
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of trace, debug, info, warn, error; got %q", c.LogLevel)
	}
	return nil
}

// APIKeyFor returns the credential for a provider name. Unknown names
// return an empty key; the provider factory rejects them separately.
func (c *Config) APIKeyFor(provider string) string {
	switch provider {
	case "openai":
		return c.OpenAIAPIKey
	case "anthropic":
		return c.AnthropicAPIKey
	}
	return ""
}

// ModelFor returns the configured model for a provider name.
func (c *Config) ModelFor(provider string) string {
	switch provider {
	case "openai":
		return c.OpenAIModel
	case "anthropic":
		return c.AnthropicModel
	}
	return ""
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func setFloat(dst *float64, key string) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: not a number: %q", key, v)
	}
	*dst = f
	return nil
}

func setInt(dst *int, key string) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: not an integer: %q", key, v)
	}
	*dst = n
	return nil
}
