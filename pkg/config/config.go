package config

import (
	"fmt"
	"strings"
	"time"

	loggerpkg "github.com/minhyannv/novelist-go/pkg/logger"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Default models, one per provider. Normalize picks one when Model is empty.
const (
	DefaultOpenAIModel    = "glm-4.5"
	DefaultAnthropicModel = "claude-sonnet-4-5"
)

// DefaultLogLevel keeps stderr quiet unless something needs attention.
const DefaultLogLevel = "warn"

// DefaultBaseURL is the z.ai OpenAI-compatible endpoint used by the openai provider.
const DefaultBaseURL = "https://api.z.ai/api/paas/v4/"

// DefaultSystemPrompt primes the model as a fiction writer.
const DefaultSystemPrompt = "你是一位顶级的小说家，擅长根据用户的提示进行续写、扩写和创作。你的文笔优美，情节富有想象力。"

// Config holds all runtime configuration for the chat client.
type Config struct {
	Provider     string
	APIKey       string
	BaseURL      string
	Model        string
	SystemPrompt string

	MaxTokens   int
	Temperature float64
	Thinking    bool

	// MaxRetries is passed to the SDK; 0 disables its retry loop.
	MaxRetries int
	// Timeout bounds one request; 0 leaves the transport default in place.
	Timeout time.Duration

	// LogLevel is one of debug, info, warn, error. Verbose forces debug.
	LogLevel string
	Verbose  bool
}

// DefaultConfig returns a baseline configuration without side effects.
func DefaultConfig() Config {
	return Config{
		Provider:     ProviderOpenAI,
		SystemPrompt: DefaultSystemPrompt,
		MaxTokens:    4096,
		Temperature:  0.8,
		Thinking:     true,
		MaxRetries:   0,
		Timeout:      0,
		LogLevel:     DefaultLogLevel,
		Verbose:      false,
	}
}

// Normalize sanitizes configuration values and applies defaults.
func Normalize(cfg Config) Config {
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.SystemPrompt = strings.TrimSpace(cfg.SystemPrompt)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if cfg.Provider == "" {
		cfg.Provider = ProviderOpenAI
	}
	if cfg.Model == "" {
		cfg.Model = defaultModels[cfg.Provider]
	}
	if cfg.Provider == ProviderOpenAI && cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.Verbose {
		cfg.LogLevel = "debug"
	}
	if cfg.LogLevel == "debug" {
		cfg.Verbose = true
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Timeout < 0 {
		cfg.Timeout = 0
	}
	return cfg
}

var defaultModels = map[string]string{
	ProviderOpenAI:    DefaultOpenAIModel,
	ProviderAnthropic: DefaultAnthropicModel,
}

// Validate reports the first setting that cannot produce a valid request.
// The API key is checked by the completion client, not here.
func Validate(cfg Config) error {
	switch cfg.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("unknown provider %q (want %q or %q)", cfg.Provider, ProviderOpenAI, ProviderAnthropic)
	}
	if cfg.Model == "" {
		return fmt.Errorf("model is not set")
	}
	if cfg.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", cfg.MaxTokens)
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return fmt.Errorf("temperature must be within [0, 2], got %g", cfg.Temperature)
	}
	if _, err := loggerpkg.ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	return nil
}
