// Package anthropic implements the LLM provider for the Anthropic
// Messages API via the official SDK.
package anthropic

import (
	"context"
	"log/slog"
	"os"
	"strings"

	sdkanthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/aeris-bot/aeris/internal/provider"
)

// Client is the Anthropic LLM provider.
type Client struct {
	config        Config
	client        *sdkanthropic.Client
	logger        *slog.Logger
	contextWindow int
}

// Compile-time interface check.
var _ provider.Provider = (*Client)(nil)

// New creates an Anthropic provider. The API key falls back to the
// ANTHROPIC_API_KEY environment variable when not configured.
func New(cfg Config, logger *slog.Logger) *Client {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		if envKey, ok := os.LookupEnv("ANTHROPIC_API_KEY"); ok {
			apiKey = envKey
		}
	}

	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	// SDK-level retries off; the caller decides what to retry.
	opts = append(opts, option.WithMaxRetries(0))

	client := sdkanthropic.NewClient(opts...)

	return &Client{
		config:        cfg,
		client:        &client,
		logger:        logger,
		contextWindow: cfg.contextWindowForModel(),
	}
}

// Complete sends a synchronous completion request to the Messages API.
func (c *Client) Complete(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
	params := convertRequest(req, &c.config, c.logger)

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return provider.CompletionResponse{}, mapError(err)
	}

	cr := convertResponse(msg)
	if strings.TrimSpace(cr.Content) == "" {
		return provider.CompletionResponse{}, provider.ErrEmptyResponse
	}
	return cr, nil
}

// ContextWindowSize implements provider.Provider.
func (c *Client) ContextWindowSize() int {
	return c.contextWindow
}

// ModelName implements provider.Provider.
func (c *Client) ModelName() string {
	return c.config.Model
}
