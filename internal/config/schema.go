// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for aeris.
package config

import (
	ctxengine "github.com/aeris-bot/aeris/internal/context"
	"github.com/aeris-bot/aeris/internal/summarizer"
)

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	// LogLevel is one of debug, info, warn, error. Defaults to info.
	LogLevel string `yaml:"log_level"`

	// DefaultPersona is the AI character used for new conversations.
	DefaultPersona string `yaml:"default_persona"`

	// Personas maps persona names to their system prompts. When empty the
	// built-in personas are used.
	Personas map[string]string `yaml:"personas"`

	// Context holds the context engine tuning knobs.
	Context ctxengine.Config `yaml:"context"`

	// Summarizer holds the summarization knobs.
	Summarizer summarizer.Config `yaml:"summarizer"`

	// Provider selects and configures the LLM backend.
	Provider ProviderConfig `yaml:"provider"`

	// Store configures conversation persistence.
	Store StoreConfig `yaml:"store"`

	// Gateway configures the ops/admin HTTP server.
	Gateway GatewayConfig `yaml:"gateway"`

	// Telegram configures the Telegram channel. Disabled when the token
	// is empty.
	Telegram TelegramConfig `yaml:"telegram"`
}

// ProviderConfig selects the LLM backend.
type ProviderConfig struct {
	// Backend is one of "gemini" or "anthropic".
	Backend string `yaml:"backend"`

	// Model is the model identifier, e.g. "gemini-2.0-flash".
	Model string `yaml:"model"`

	// APIKey authenticates against the backend. Supports ${VAR} expansion.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the backend endpoint (useful for proxies and tests).
	BaseURL string `yaml:"base_url"`

	// TimeoutSeconds bounds one completion call. Defaults to 60.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// StoreConfig configures conversation persistence.
type StoreConfig struct {
	// Path is the SQLite database file. Empty selects the in-memory store
	// (nothing survives a restart).
	Path string `yaml:"path"`

	// RetentionDays is how long summaries are kept before the retention
	// job removes them. 0 disables retention.
	RetentionDays int `yaml:"retention_days"`

	// RetentionSchedule is the cron expression for the retention job.
	// Defaults to "0 4 * * *" (daily at 04:00).
	RetentionSchedule string `yaml:"retention_schedule"`
}

// GatewayConfig configures the ops/admin HTTP server.
type GatewayConfig struct {
	// Listen is the address to bind, e.g. ":8080". Empty disables the
	// gateway.
	Listen string `yaml:"listen"`

	// AuthToken protects the admin API. Empty leaves only /health and
	// /metrics mounted.
	AuthToken string `yaml:"auth_token"`
}

// TelegramConfig configures the Telegram channel.
type TelegramConfig struct {
	// Token is the Bot API token. Empty disables the channel.
	Token string `yaml:"token"`

	// PollTimeoutSeconds is the getUpdates long-poll timeout. Defaults to 30.
	PollTimeoutSeconds int `yaml:"poll_timeout_seconds"`

	// BaseURL overrides the Bot API endpoint (tests).
	BaseURL string `yaml:"base_url"`
}

// withDefaults fills zero-valued fields in place.
func (cfg *Config) withDefaults() {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.DefaultPersona == "" {
		cfg.DefaultPersona = "aeris"
	}
	if cfg.Provider.Backend == "" {
		cfg.Provider.Backend = "gemini"
	}
	if cfg.Provider.Model == "" {
		cfg.Provider.Model = "gemini-2.0-flash"
	}
	if cfg.Provider.TimeoutSeconds == 0 {
		cfg.Provider.TimeoutSeconds = 60
	}
	if cfg.Store.RetentionSchedule == "" {
		cfg.Store.RetentionSchedule = "0 4 * * *"
	}
	if cfg.Telegram.PollTimeoutSeconds == 0 {
		cfg.Telegram.PollTimeoutSeconds = 30
	}
}
