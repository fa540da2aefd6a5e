package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	configpkg "github.com/minhyannv/novelist-go/pkg/config"
)

// parseCLIConfig resolves config as defaults < YAML file < environment < flags.
// The API key only ever comes from the environment.
func parseCLIConfig(args []string, getenv func(string) string, stderr io.Writer) (configpkg.Config, error) {
	defaults := configpkg.DefaultConfig()

	fs := flag.NewFlagSet("novelist", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", configpkg.DefaultFile, "YAML config file (missing default file is ignored)")
	provider := fs.String("provider", defaults.Provider, "Completion provider: openai (z.ai compatible) or anthropic")
	baseURL := fs.String("base_url", "", "Override the provider base URL")
	model := fs.String("model", "", fmt.Sprintf("Model identifier (default %s for openai, %s for anthropic)",
		configpkg.DefaultOpenAIModel, configpkg.DefaultAnthropicModel))
	maxTokens := fs.Int("max_tokens", defaults.MaxTokens, "Max output tokens per reply")
	temperature := fs.Float64("temperature", defaults.Temperature, "Sampling temperature")
	thinking := fs.Bool("thinking", defaults.Thinking, "Ask the model to reason before answering")
	maxRetries := fs.Int("max_retries", defaults.MaxRetries, "SDK retries per request (0 disables retries)")
	timeout := fs.Duration("timeout", defaults.Timeout, "Per-request timeout (0 keeps the transport default)")
	logLevel := fs.String("log_level", defaults.LogLevel, "Minimum stderr log level: debug, info, warn, error")
	verbose := fs.Bool("verbose", defaults.Verbose, "Verbose debug logging to stderr (same as -log_level debug)")
	if err := fs.Parse(args); err != nil {
		return defaults, err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg := defaults
	loaded, err := configpkg.LoadFile(*configPath, cfg)
	switch {
	case err == nil:
		cfg = loaded
	case errors.Is(err, os.ErrNotExist) && !set["config"]:
	default:
		return defaults, fmt.Errorf("load config %s: %w", *configPath, err)
	}

	if v := strings.TrimSpace(getenv("NOVELIST_PROVIDER")); v != "" {
		cfg.Provider = v
	}
	if v := strings.TrimSpace(getenv("NOVELIST_BASE_URL")); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(getenv("NOVELIST_MODEL")); v != "" {
		cfg.Model = v
	}
	if v := strings.TrimSpace(getenv("NOVELIST_LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}

	if set["provider"] {
		cfg.Provider = *provider
	}
	if set["base_url"] {
		cfg.BaseURL = *baseURL
	}
	if set["model"] {
		cfg.Model = *model
	}
	if set["max_tokens"] {
		cfg.MaxTokens = *maxTokens
	}
	if set["temperature"] {
		cfg.Temperature = *temperature
	}
	if set["thinking"] {
		cfg.Thinking = *thinking
	}
	if set["max_retries"] {
		cfg.MaxRetries = *maxRetries
	}
	if set["timeout"] {
		cfg.Timeout = *timeout
	}
	if set["log_level"] {
		cfg.LogLevel = *logLevel
	}
	cfg.Verbose = *verbose

	cfg = configpkg.Normalize(cfg)
	cfg.APIKey = apiKeyFromEnv(cfg.Provider, getenv)
	if err := configpkg.Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// apiKeyEnvVars lists the variables checked for each provider, in order.
var apiKeyEnvVars = map[string][]string{
	configpkg.ProviderOpenAI:    {"ZAI_API_KEY", "OPENAI_API_KEY"},
	configpkg.ProviderAnthropic: {"ANTHROPIC_API_KEY"},
}

func apiKeyFromEnv(provider string, getenv func(string) string) string {
	for _, name := range apiKeyEnvVars[provider] {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			return v
		}
	}
	return ""
}
