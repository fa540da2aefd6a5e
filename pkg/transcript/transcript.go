// Package transcript holds the ordered, role-tagged conversation history.
package transcript

import "fmt"

// Role is the role for a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// Message is the provider-agnostic chat message.
type Message struct {
	Role    Role
	Content string
}

// Transcript is a conversation that always starts with one system message.
// The zero value is not usable; build one with New.
type Transcript struct {
	messages []Message
	staged   bool
}

// New returns a transcript primed with the given system prompt.
func New(systemPrompt string) *Transcript {
	return &Transcript{
		messages: []Message{{Role: RoleSystem, Content: systemPrompt}},
	}
}

// Len returns the number of committed messages, including the system message.
func (t *Transcript) Len() int {
	if t.staged {
		return len(t.messages) - 1
	}
	return len(t.messages)
}

// SystemPrompt returns the content of the leading system message.
func (t *Transcript) SystemPrompt() string {
	return t.messages[0].Content
}

// Messages returns a copy of every message, system message first.
// A staged user message is included so it can be sent as request context.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// History returns a copy of the committed messages after the system message.
func (t *Transcript) History() []Message {
	end := t.Len()
	out := make([]Message, end-1)
	copy(out, t.messages[1:end])
	return out
}

// Stage appends a pending user message. It must be followed by Commit or Discard.
func (t *Transcript) Stage(userInput string) error {
	if t.staged {
		return fmt.Errorf("transcript: a user message is already staged")
	}
	t.messages = append(t.messages, Message{Role: RoleUser, Content: userInput})
	t.staged = true
	return nil
}

// Commit keeps the staged user message and appends the assistant reply after it.
func (t *Transcript) Commit(reply string) error {
	if !t.staged {
		return fmt.Errorf("transcript: nothing staged to commit")
	}
	t.messages = append(t.messages, Message{Role: RoleAssistant, Content: reply})
	t.staged = false
	return nil
}

// Discard drops the staged user message, if any.
func (t *Transcript) Discard() {
	if !t.staged {
		return
	}
	t.messages = t.messages[:len(t.messages)-1]
	t.staged = false
}

// Reset drops everything except the system message.
func (t *Transcript) Reset() {
	t.messages = t.messages[:1]
	t.staged = false
}
