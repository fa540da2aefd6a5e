package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is read from the working directory when no -config flag is given.
const DefaultFile = "novelist.yaml"

// fileConfig mirrors the YAML config file. Unset keys leave the base value alone.
type fileConfig struct {
	Provider     *string  `yaml:"provider"`
	BaseURL      *string  `yaml:"base_url"`
	Model        *string  `yaml:"model"`
	SystemPrompt *string  `yaml:"system_prompt"`
	MaxTokens    *int     `yaml:"max_tokens"`
	Temperature  *float64 `yaml:"temperature"`
	Thinking     *bool    `yaml:"thinking"`
	MaxRetries   *int     `yaml:"max_retries"`
	Timeout      *string  `yaml:"timeout"`
	LogLevel     *string  `yaml:"log_level"`
}

// LoadFile overlays the YAML file at path onto base.
// The API key is deliberately not read from the file.
func LoadFile(path string, base Config) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return base, err
	}
	return parseFile(content, base)
}

func parseFile(content []byte, base Config) (Config, error) {
	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		if errors.Is(err, io.EOF) {
			return base, nil
		}
		return base, fmt.Errorf("parse config: %w", err)
	}

	cfg := base
	if fc.Provider != nil {
		cfg.Provider = *fc.Provider
	}
	if fc.BaseURL != nil {
		cfg.BaseURL = *fc.BaseURL
	}
	if fc.Model != nil {
		cfg.Model = *fc.Model
	}
	if fc.SystemPrompt != nil {
		cfg.SystemPrompt = *fc.SystemPrompt
	}
	if fc.MaxTokens != nil {
		cfg.MaxTokens = *fc.MaxTokens
	}
	if fc.Temperature != nil {
		cfg.Temperature = *fc.Temperature
	}
	if fc.Thinking != nil {
		cfg.Thinking = *fc.Thinking
	}
	if fc.MaxRetries != nil {
		cfg.MaxRetries = *fc.MaxRetries
	}
	if fc.Timeout != nil {
		d, err := time.ParseDuration(*fc.Timeout)
		if err != nil {
			return base, fmt.Errorf("parse config: timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	return cfg, nil
}
