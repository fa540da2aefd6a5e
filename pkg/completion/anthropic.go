package completion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	loggerpkg "github.com/minhyannv/novelist-go/pkg/logger"
	"github.com/minhyannv/novelist-go/pkg/transcript"
)

// minThinkingBudget is the smallest budget_tokens the Messages API accepts.
const minThinkingBudget = 1024

type anthropicCompleter struct {
	client  anthropic.Client
	opts    Options
	logger  loggerpkg.Logger
	verbose bool
}

// NewAnthropic builds a Completer backed by the Anthropic Messages API.
func NewAnthropic(cfg Config) (Completer, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &anthropicCompleter{
		client:  anthropic.NewClient(opts...),
		opts:    cfg.Options,
		logger:  cfg.logger(),
		verbose: cfg.Verbose,
	}, nil
}

func (c *anthropicCompleter) Complete(ctx context.Context, messages []transcript.Message) (string, error) {
	system, converted, err := toAnthropicMessages(messages)
	if err != nil {
		return "", err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.opts.Model),
		MaxTokens: int64(c.opts.MaxTokens),
		Messages:  converted,
	}
	if len(system) > 0 {
		params.System = system
	}

	// Extended thinking does not accept a custom temperature.
	budget := thinkingBudget(c.opts.MaxTokens)
	if c.opts.Thinking && budget > 0 {
		params.Thinking = anthropic.ThinkingConfigParamOfEnabled(budget)
	} else {
		if c.opts.Thinking {
			loggerpkg.Warn(c.logger, "max_tokens too small for thinking, sending without it", map[string]any{
				"max_tokens": c.opts.MaxTokens,
			})
		}
		params.Temperature = anthropic.Float(c.opts.Temperature)
	}

	loggerpkg.Debug(c.verbose, c.logger, "anthropic request", map[string]any{
		"model":           c.opts.Model,
		"messages":        len(converted),
		"max_tokens":      c.opts.MaxTokens,
		"thinking_budget": budget,
	})

	start := time.Now()
	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var sb strings.Builder
	found := false
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
			found = true
		}
	}
	if !found {
		return "", ErrEmptyCompletion
	}

	loggerpkg.Debug(c.verbose, c.logger, "anthropic response", map[string]any{
		"duration_ms":   time.Since(start).Milliseconds(),
		"stop_reason":   resp.StopReason,
		"input_tokens":  resp.Usage.InputTokens,
		"output_tokens": resp.Usage.OutputTokens,
	})
	return sb.String(), nil
}

// thinkingBudget returns half of maxTokens, at least minThinkingBudget, or 0
// when no valid budget fits below maxTokens.
func thinkingBudget(maxTokens int) int64 {
	budget := maxTokens / 2
	if budget < minThinkingBudget {
		budget = minThinkingBudget
	}
	if budget >= maxTokens {
		return 0
	}
	return int64(budget)
}

// toAnthropicMessages splits system messages out, since the Messages API takes
// them separately from the conversation.
func toAnthropicMessages(messages []transcript.Message) ([]anthropic.TextBlockParam, []anthropic.MessageParam, error) {
	var system []anthropic.TextBlockParam
	out := make([]anthropic.MessageParam, 0, len(messages))
	for i, msg := range messages {
		if !msg.Role.Valid() {
			return nil, nil, fmt.Errorf("invalid message role at index %d: %q", i, msg.Role)
		}
		switch msg.Role {
		case transcript.RoleSystem:
			system = append(system, anthropic.TextBlockParam{
				Type: "text",
				Text: msg.Content,
			})
		case transcript.RoleUser:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case transcript.RoleAssistant:
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	return system, out, nil
}
