// Package gemini implements the LLM provider for the Google Generative
// Language API (Gemini) using its generateContent endpoint.
package gemini

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aeris-bot/aeris/internal/provider"
)

// Provider is the Gemini LLM provider.
type Provider struct {
	config Config
	client *http.Client
	logger *slog.Logger
}

// Compile-time interface check.
var _ provider.Provider = (*Provider)(nil)

// New creates a Gemini provider.
func New(cfg Config, logger *slog.Logger) *Provider {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		config: cfg,
		// Response-header timeout instead of a global client timeout, so a
		// slow body read is bounded by the caller's context alone.
		client: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: cfg.Timeout,
			},
		},
		logger: logger,
	}
}

// Complete sends a synchronous generateContent request.
func (p *Provider) Complete(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
	body := buildRequest(p.config.MaxTokens, req)

	resp, err := p.doRequest(ctx, body)
	if err != nil {
		return provider.CompletionResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return provider.CompletionResponse{}, handleErrorResponse(resp)
	}

	out, err := decodeResponse(resp.Body)
	if err != nil {
		return provider.CompletionResponse{}, err
	}

	cr := parseResponse(out)
	if strings.TrimSpace(cr.Content) == "" {
		return provider.CompletionResponse{}, provider.ErrEmptyResponse
	}
	return cr, nil
}

// ContextWindowSize implements provider.Provider.
func (p *Provider) ContextWindowSize() int {
	return p.config.contextWindowForModel()
}

// ModelName implements provider.Provider.
func (p *Provider) ModelName() string {
	return p.config.Model
}
