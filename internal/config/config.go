// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joeshaw/envdecode"
)

// Config is the complete process configuration. Defaults are supplied via
// envdecode struct tags.
type Config struct {
	BotToken   string `env:"TELEGRAM_BOT_TOKEN"`
	ChatID     string `env:"TELEGRAM_CHAT_ID"`
	APIBaseURL string `env:"TELEGRAM_API_BASE_URL,default=https://api.telegram.org"`
	LogLevel   string `env:"TELEGRAM_MCP_LOG_LEVEL,default=warn"`
}

// MissingError reports required variables that were unset or blank.
type MissingError struct {
	Vars []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing required environment variables: %s", strings.Join(e.Vars, ", "))
}

// Load decodes Config from the process environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the credentials are present and the log level parses.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.BotToken) == "" {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}
	if strings.TrimSpace(c.ChatID) == "" {
		missing = append(missing, "TELEGRAM_CHAT_ID")
	}
	if len(missing) > 0 {
		return &MissingError{Vars: missing}
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel into a slog.Level.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid TELEGRAM_MCP_LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}
