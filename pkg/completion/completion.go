// Package completion adapts remote chat-completion services to one small interface.
package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	configpkg "github.com/minhyannv/novelist-go/pkg/config"
	loggerpkg "github.com/minhyannv/novelist-go/pkg/logger"
	"github.com/minhyannv/novelist-go/pkg/transcript"
)

var (
	// ErrMissingAPIKey is returned when a client is built without a credential.
	ErrMissingAPIKey = errors.New("API key is not set")
	// ErrEmptyCompletion is returned when the service answers without a candidate.
	ErrEmptyCompletion = errors.New("empty completion choices")
)

// Completer turns a transcript into the next assistant reply.
type Completer interface {
	Complete(ctx context.Context, messages []transcript.Message) (string, error)
}

// Options are applied to every request.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float64
	Thinking    bool
}

// Config builds a Completer.
type Config struct {
	Provider   string
	APIKey     string
	BaseURL    string
	MaxRetries int
	Timeout    time.Duration
	Options    Options

	// HTTPClient overrides the SDK's default client. Used by tests.
	HTTPClient *http.Client
	Logger     loggerpkg.Logger
	Verbose    bool
}

// FromConfig maps runtime configuration onto a completion Config.
func FromConfig(cfg configpkg.Config, logger loggerpkg.Logger) Config {
	return Config{
		Provider:   cfg.Provider,
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		MaxRetries: cfg.MaxRetries,
		Timeout:    cfg.Timeout,
		Options: Options{
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Thinking:    cfg.Thinking,
		},
		Logger:  logger,
		Verbose: cfg.Verbose,
	}
}

// New returns the Completer for cfg.Provider.
func New(cfg Config) (Completer, error) {
	switch cfg.Provider {
	case "", configpkg.ProviderOpenAI:
		return NewOpenAI(cfg)
	case configpkg.ProviderAnthropic:
		return NewAnthropic(cfg)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

func (c Config) logger() loggerpkg.Logger {
	if c.Logger == nil {
		return loggerpkg.NopLogger{}
	}
	return c.Logger
}
