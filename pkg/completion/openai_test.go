package completion

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/minhyannv/novelist-go/pkg/transcript"
)

const okChatResponse = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1,
  "model": "glm-4.5",
  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "  夜色渐浓。\n"}}],
  "usage": {"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17}
}`

func newTestOpenAI(t *testing.T, ft *fakeTransport, opts Options) Completer {
	t.Helper()
	c, err := NewOpenAI(Config{
		APIKey:     "test-key",
		BaseURL:    "http://glm.test/api/paas/v4/",
		Options:    opts,
		HTTPClient: httpClientFor(ft),
	})
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}
	return c
}

func sampleMessages() []transcript.Message {
	return []transcript.Message{
		{Role: transcript.RoleSystem, Content: "你是一位小说家。"},
		{Role: transcript.RoleUser, Content: "写一个开头"},
		{Role: transcript.RoleAssistant, Content: "很久以前"},
		{Role: transcript.RoleUser, Content: "继续"},
	}
}

func TestOpenAICompleteSendsFullRequest(t *testing.T) {
	capReq := &capture{}
	ft := &fakeTransport{respStatus: 200, respBody: []byte(okChatResponse), captured: capReq}
	c := newTestOpenAI(t, ft, Options{Model: "glm-4.5", MaxTokens: 4096, Temperature: 0.8, Thinking: true})

	reply, err := c.Complete(context.Background(), sampleMessages())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if reply != "  夜色渐浓。\n" {
		t.Fatalf("expected raw reply content, got %q", reply)
	}
	if !strings.HasSuffix(capReq.url, "/chat/completions") {
		t.Fatalf("unexpected url: %s", capReq.url)
	}

	var body struct {
		Model       string  `json:"model"`
		MaxTokens   int     `json:"max_tokens"`
		Temperature float64 `json:"temperature"`
		Thinking    struct {
			Type string `json:"type"`
		} `json:"thinking"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(capReq.body, &body); err != nil {
		t.Fatalf("unmarshal body: %v\nbody=%s", err, string(capReq.body))
	}
	if body.Model != "glm-4.5" || body.MaxTokens != 4096 || body.Temperature != 0.8 {
		t.Fatalf("unexpected request params: %+v", body)
	}
	if body.Thinking.Type != "enabled" {
		t.Fatalf("expected thinking enabled, got %q", body.Thinking.Type)
	}
	wantRoles := []string{"system", "user", "assistant", "user"}
	if len(body.Messages) != len(wantRoles) {
		t.Fatalf("expected %d messages, got %d", len(wantRoles), len(body.Messages))
	}
	for i, role := range wantRoles {
		if body.Messages[i].Role != role {
			t.Fatalf("message %d: expected role %s, got %s", i, role, body.Messages[i].Role)
		}
	}
	if body.Messages[3].Content != "继续" {
		t.Fatalf("unexpected last message content: %q", body.Messages[3].Content)
	}
}

func TestOpenAICompleteThinkingDisabled(t *testing.T) {
	capReq := &capture{}
	ft := &fakeTransport{respStatus: 200, respBody: []byte(okChatResponse), captured: capReq}
	c := newTestOpenAI(t, ft, Options{Model: "glm-4.5", MaxTokens: 100, Temperature: 0.2})

	if _, err := c.Complete(context.Background(), sampleMessages()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.Contains(string(capReq.body), `"thinking":{"type":"disabled"}`) {
		t.Fatalf("expected disabled thinking flag in body: %s", string(capReq.body))
	}
}

func TestOpenAICompleteServerErrorDoesNotRetry(t *testing.T) {
	capReq := &capture{}
	ft := &fakeTransport{
		respStatus: 500,
		respBody:   []byte(`{"error": {"message": "upstream overloaded"}}`),
		captured:   capReq,
	}
	c := newTestOpenAI(t, ft, Options{Model: "glm-4.5", MaxTokens: 10})

	_, err := c.Complete(context.Background(), sampleMessages())
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if capReq.calls != 1 {
		t.Fatalf("expected exactly one request, got %d", capReq.calls)
	}
}

func TestOpenAICompleteEmptyChoices(t *testing.T) {
	ft := &fakeTransport{respStatus: 200, respBody: []byte(`{"id":"x","choices":[]}`)}
	c := newTestOpenAI(t, ft, Options{Model: "glm-4.5", MaxTokens: 10})

	_, err := c.Complete(context.Background(), sampleMessages())
	if !errors.Is(err, ErrEmptyCompletion) {
		t.Fatalf("expected ErrEmptyCompletion, got %v", err)
	}
}

func TestOpenAICompleteRejectsInvalidRole(t *testing.T) {
	capReq := &capture{}
	ft := &fakeTransport{respStatus: 200, respBody: []byte(okChatResponse), captured: capReq}
	c := newTestOpenAI(t, ft, Options{Model: "glm-4.5", MaxTokens: 10})

	_, err := c.Complete(context.Background(), []transcript.Message{{Role: "tool", Content: "x"}})
	if err == nil || !strings.Contains(err.Error(), "invalid message role at index 0") {
		t.Fatalf("expected invalid role error, got %v", err)
	}
	if capReq.calls != 0 {
		t.Fatalf("expected no request for invalid transcript, got %d", capReq.calls)
	}
}

func TestNewOpenAIRequiresAPIKey(t *testing.T) {
	_, err := NewOpenAI(Config{APIKey: "   "})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestNewSelectsProvider(t *testing.T) {
	c, err := New(Config{Provider: "openai", APIKey: "k"})
	if err != nil {
		t.Fatalf("openai: %v", err)
	}
	if _, ok := c.(*openAICompleter); !ok {
		t.Fatalf("expected openai completer, got %T", c)
	}

	c, err = New(Config{Provider: "anthropic", APIKey: "k"})
	if err != nil {
		t.Fatalf("anthropic: %v", err)
	}
	if _, ok := c.(*anthropicCompleter); !ok {
		t.Fatalf("expected anthropic completer, got %T", c)
	}

	if _, err := New(Config{Provider: "gemini", APIKey: "k"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
