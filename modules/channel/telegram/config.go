package telegram

// defaultBaseURL is the public Bot API endpoint.
const defaultBaseURL = "https://api.telegram.org"

// Config holds the Telegram channel configuration.
type Config struct {
	// Token is the Bot API token.
	Token string `yaml:"token"`

	// BaseURL overrides the Bot API endpoint (proxies and tests).
	BaseURL string `yaml:"base_url"`

	// PollTimeoutSeconds is the getUpdates long-poll timeout. Defaults
	// to 30.
	PollTimeoutSeconds int `yaml:"poll_timeout_seconds"`
}

// defaults fills zero values with sensible defaults.
func (c *Config) defaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.PollTimeoutSeconds == 0 {
		c.PollTimeoutSeconds = 30
	}
}
