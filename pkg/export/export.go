// Package export renders a conversation as a plain-text file.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minhyannv/novelist-go/pkg/transcript"
)

const (
	// Extension is forced onto every saved file name.
	Extension = ".txt"

	UserLabel      = "你"
	AssistantLabel = "AI"
)

// ErrEmptyFilename is returned for a blank file name.
var ErrEmptyFilename = errors.New("filename is required")

// Label returns the display word for a role.
func Label(role transcript.Role) string {
	if role == transcript.RoleUser {
		return UserLabel
	}
	return AssistantLabel
}

// Format renders each message as "[label]: content" followed by a blank line.
// System messages are skipped.
func Format(messages []transcript.Message) string {
	var sb strings.Builder
	for _, msg := range messages {
		if msg.Role == transcript.RoleSystem {
			continue
		}
		sb.WriteString("[")
		sb.WriteString(Label(msg.Role))
		sb.WriteString("]: ")
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// NormalizeFilename trims name and appends Extension unless it already ends
// with it in any letter case.
func NormalizeFilename(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyFilename
	}
	if !strings.HasSuffix(strings.ToLower(name), Extension) {
		name += Extension
	}
	return name, nil
}

// WriteFile writes the formatted messages to path, replacing any existing file,
// and returns the absolute path written.
func WriteFile(path string, messages []transcript.Message) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	// Go strings are UTF-8 already, so the bytes go out unchanged.
	if err := os.WriteFile(abs, []byte(Format(messages)), 0o644); err != nil {
		return "", err
	}
	return abs, nil
}
