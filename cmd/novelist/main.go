// Package main is a terminal writing companion backed by a chat-completion model.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/minhyannv/novelist-go/pkg/chat"
	"github.com/minhyannv/novelist-go/pkg/completion"
	loggerpkg "github.com/minhyannv/novelist-go/pkg/logger"
)

// main is the program entry point.
func main() {
	_ = godotenv.Load()

	config, err := parseCLIConfig(os.Args[1:], os.Getenv, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level, err := loggerpkg.ParseLevel(config.LogLevel)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	appLogger := loggerpkg.NewWriterLogger(os.Stderr, level)

	completer, err := completion.New(completion.FromConfig(config, appLogger))
	if err != nil {
		if errors.Is(err, completion.ErrMissingAPIKey) {
			err = fmt.Errorf("%w (export one of %v or put it in .env)", err, apiKeyEnvVars[config.Provider])
		}
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	session, err := chat.New(context.Background(), completer,
		chat.WithLogger(appLogger, config.Verbose),
		chat.WithSystemPrompt(config.SystemPrompt),
	)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := runREPL(session, replOptions{
		Verbose: config.Verbose,
		Logger:  appLogger,
	}, os.Stdin, os.Stdout); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
