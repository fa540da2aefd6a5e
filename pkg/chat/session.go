// Package chat runs conversation turns against a completion service.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/minhyannv/novelist-go/pkg/completion"
	configpkg "github.com/minhyannv/novelist-go/pkg/config"
	loggerpkg "github.com/minhyannv/novelist-go/pkg/logger"
	"github.com/minhyannv/novelist-go/pkg/transcript"
)

var (
	// ErrEmptyInput is returned by Send for blank input.
	ErrEmptyInput = errors.New("user input is required")
	// ErrEmptyReply is returned when the service answers with only whitespace.
	ErrEmptyReply = errors.New("empty completion")
)

// Session holds one conversation and the client used to continue it.
type Session struct {
	ID string

	completer  completion.Completer
	transcript *transcript.Transcript

	ctx     context.Context
	logger  loggerpkg.Logger
	verbose bool
}

// New builds a Session around completer. The completer is required.
func New(ctx context.Context, completer completion.Completer, opts ...Option) (*Session, error) {
	if completer == nil {
		return nil, errors.New("completer is required")
	}
	deps := sessionDeps{
		logger:       loggerpkg.NopLogger{},
		systemPrompt: configpkg.DefaultSystemPrompt,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&deps)
		}
	}
	if deps.logger == nil {
		deps.logger = loggerpkg.NopLogger{}
	}
	if strings.TrimSpace(deps.systemPrompt) == "" {
		return nil, errors.New("system prompt is empty")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	s := &Session{
		ID:         uuid.NewString(),
		completer:  completer,
		transcript: transcript.New(deps.systemPrompt),
		ctx:        ctx,
		logger:     deps.logger,
		verbose:    deps.verbose,
	}
	loggerpkg.Debug(s.verbose, s.logger, "session start", map[string]any{
		"session_id":    s.ID,
		"system_prompt": len(s.transcript.SystemPrompt()),
	})
	return s, nil
}

// Send runs one turn: the user message is staged, the whole transcript is sent,
// and the pair is committed only when a non-empty reply comes back. On error the
// transcript is left exactly as it was.
func (s *Session) Send(userInput string) (string, error) {
	userInput = strings.TrimSpace(userInput)
	if userInput == "" {
		return "", ErrEmptyInput
	}

	if err := s.transcript.Stage(userInput); err != nil {
		return "", err
	}
	loggerpkg.Debug(s.verbose, s.logger, "turn start", map[string]any{
		"session_id": s.ID,
		"messages":   len(s.transcript.Messages()),
	})

	reply, err := s.completer.Complete(s.ctx, s.transcript.Messages())
	if err == nil {
		reply = strings.TrimSpace(reply)
		if reply == "" {
			err = ErrEmptyReply
		}
	}
	if err != nil {
		s.transcript.Discard()
		loggerpkg.Debug(s.verbose, s.logger, "turn failed", map[string]any{
			"session_id": s.ID,
			"error":      err.Error(),
		})
		return "", err
	}

	if err := s.transcript.Commit(reply); err != nil {
		s.transcript.Discard()
		return "", fmt.Errorf("commit reply: %w", err)
	}
	loggerpkg.Debug(s.verbose, s.logger, "turn committed", map[string]any{
		"session_id":  s.ID,
		"messages":    s.transcript.Len(),
		"reply_bytes": len(reply),
	})
	return reply, nil
}

// History returns the conversation without the system message.
func (s *Session) History() []transcript.Message {
	return s.transcript.History()
}

// Transcript returns every message, system message first.
func (s *Session) Transcript() []transcript.Message {
	return s.transcript.Messages()
}

// Reset clears conversation history and keeps only the system message.
func (s *Session) Reset() {
	s.transcript.Reset()
	loggerpkg.Debug(s.verbose, s.logger, "session reset", map[string]any{"session_id": s.ID})
}
