package completion

import (
	"context"
	"fmt"
	"strings"
	"time"

	loggerpkg "github.com/minhyannv/novelist-go/pkg/logger"
	"github.com/minhyannv/novelist-go/pkg/transcript"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// openAICompleter talks to any OpenAI-compatible chat completions endpoint,
// z.ai's GLM API included.
type openAICompleter struct {
	client  openai.Client
	opts    Options
	logger  loggerpkg.Logger
	verbose bool
}

// NewOpenAI builds a Completer backed by openai-go.
func NewOpenAI(cfg Config) (Completer, error) {
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

	return &openAICompleter{
		client:  openai.NewClient(opts...),
		opts:    cfg.Options,
		logger:  cfg.logger(),
		verbose: cfg.Verbose,
	}, nil
}

func (c *openAICompleter) Complete(ctx context.Context, messages []transcript.Message) (string, error) {
	params, err := c.newParams(messages)
	if err != nil {
		return "", err
	}

	loggerpkg.Debug(c.verbose, c.logger, "openai request", map[string]any{
		"model":       c.opts.Model,
		"messages":    len(messages),
		"max_tokens":  c.opts.MaxTokens,
		"temperature": c.opts.Temperature,
		"thinking":    c.opts.Thinking,
	})

	start := time.Now()
	completion, err := c.client.Chat.Completions.New(ctx, params, c.thinkingOption())
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	loggerpkg.Debug(c.verbose, c.logger, "openai response", map[string]any{
		"duration_ms":       time.Since(start).Milliseconds(),
		"finish_reason":     completion.Choices[0].FinishReason,
		"prompt_tokens":     completion.Usage.PromptTokens,
		"completion_tokens": completion.Usage.CompletionTokens,
	})
	return completion.Choices[0].Message.Content, nil
}

func (c *openAICompleter) newParams(messages []transcript.Message) (openai.ChatCompletionNewParams, error) {
	converted, err := toOpenAIMessages(messages)
	if err != nil {
		return openai.ChatCompletionNewParams{}, err
	}
	return openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.opts.Model),
		Messages:    converted,
		MaxTokens:   openai.Int(int64(c.opts.MaxTokens)),
		Temperature: openai.Float(c.opts.Temperature),
	}, nil
}

// thinkingOption sets GLM's structured thinking flag, which the OpenAI
// params type has no field for.
func (c *openAICompleter) thinkingOption() option.RequestOption {
	mode := "disabled"
	if c.opts.Thinking {
		mode = "enabled"
	}
	return option.WithJSONSet("thinking", map[string]any{"type": mode})
}

func toOpenAIMessages(messages []transcript.Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for i, msg := range messages {
		if !msg.Role.Valid() {
			return nil, fmt.Errorf("invalid message role at index %d: %q", i, msg.Role)
		}
		switch msg.Role {
		case transcript.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case transcript.RoleUser:
			out = append(out, openai.UserMessage(msg.Content))
		case transcript.RoleAssistant:
			out = append(out, openai.AssistantMessage(msg.Content))
		}
	}
	return out, nil
}
