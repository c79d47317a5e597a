package gemini

import "time"

// defaultModel is the model used when none is specified.
const defaultModel = "gemini-2.0-flash"

// defaultBaseURL is the Google Generative Language API endpoint.
const defaultBaseURL = "https://generativelanguage.googleapis.com"

// defaultContextWindow covers the Gemini 1.5/2.0 Flash family (1M tokens).
const defaultContextWindow = 1_048_576

// defaultTimeout bounds the response-header phase of a request. Per-request
// contexts handle overall cancellation.
const defaultTimeout = 30 * time.Second

// Config holds the configuration for the Gemini provider.
type Config struct {
	APIKey        string        `yaml:"api_key"`
	Model         string        `yaml:"model"`
	BaseURL       string        `yaml:"base_url"`
	MaxTokens     int           `yaml:"max_tokens"`
	ContextWindow int           `yaml:"context_window"`
	Timeout       time.Duration `yaml:"timeout"`
}

// defaults fills in zero-value fields with sensible defaults.
func (c *Config) defaults() {
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 1024
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
}

// contextWindowForModel returns the context window size for the configured
// model, honouring an explicit override.
func (c *Config) contextWindowForModel() int {
	if c.ContextWindow > 0 {
		return c.ContextWindow
	}
	return defaultContextWindow
}
