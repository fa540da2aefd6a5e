package chat

import loggerpkg "github.com/minhyannv/novelist-go/pkg/logger"

// Option configures optional runtime dependencies for Session.
type Option func(*sessionDeps)

type sessionDeps struct {
	logger       loggerpkg.Logger
	verbose      bool
	systemPrompt string
}

// WithLogger injects a logger dependency. verbose enables debug lines.
func WithLogger(l loggerpkg.Logger, verbose bool) Option {
	return func(d *sessionDeps) {
		d.logger = l
		d.verbose = verbose
	}
}

// WithSystemPrompt replaces the default priming message.
func WithSystemPrompt(prompt string) Option {
	return func(d *sessionDeps) {
		d.systemPrompt = prompt
	}
}
