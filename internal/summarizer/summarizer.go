// Package summarizer condenses conversation transcripts into short
// persona-voiced summaries using an LLM provider.
package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aeris-bot/aeris/internal/provider"
)

// defaultPromptTemplate is used when no per-persona template is
// configured. Placeholders: {persona} and {transcript}.
const defaultPromptTemplate = "You are {persona}. Write a short, informative summary " +
	"of the following conversation (2-4 sentences), keeping the key topics, the emotional " +
	"tone, and any important details. Speak in your own voice as {persona}.\n\n" +
	"Conversation:\n{transcript}\n\nSummary:"

// Config holds summarization tuning knobs.
type Config struct {
	// MaxTokens caps the summary length. Defaults to 200.
	MaxTokens int `yaml:"max_tokens"`

	// Temperature for the summarization call. Defaults to 0.3 when nil;
	// an explicit 0 pins fully deterministic summaries.
	Temperature *float64 `yaml:"temperature"`

	// PromptTemplates maps persona name to a custom prompt template with
	// {persona} and {transcript} placeholders. Missing personas use the
	// built-in default.
	PromptTemplates map[string]string `yaml:"prompt_templates"`
}

// withDefaults returns a copy of cfg with zero-valued fields replaced.
func (cfg Config) withDefaults() Config {
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 200
	}
	if cfg.Temperature == nil {
		temp := 0.3
		cfg.Temperature = &temp
	}
	return cfg
}

// Summarizer produces conversation summaries through a Provider.
// A failure is an error return, never an in-band marker string.
type Summarizer struct {
	prov   provider.Provider
	cfg    Config
	logger *slog.Logger
}

// New creates a Summarizer on top of prov.
func New(prov provider.Provider, cfg Config, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{prov: prov, cfg: cfg.withDefaults(), logger: logger}
}

// Summarize condenses transcript into a short summary voiced by persona.
// Blocks on network I/O; honor ctx for timeouts. An empty model response
// is an error: callers never have to inspect the text for failure marks.
func (s *Summarizer) Summarize(ctx context.Context, transcript, persona string) (string, error) {
	prompt := s.prompt(transcript, persona)

	resp, err := s.prov.Complete(ctx, provider.CompletionRequest{
		Messages: []provider.LLMMessage{
			{Role: provider.MessageRoleUser, Content: prompt},
		},
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("summarizer: %w", err)
	}

	summary := strings.TrimSpace(resp.Content)
	if summary == "" {
		return "", fmt.Errorf("summarizer: %w", provider.ErrEmptyResponse)
	}

	s.logger.Debug("summarizer: summary created",
		"persona", persona,
		"transcript_chars", len(transcript),
		"summary_chars", len(summary))
	return summary, nil
}

// prompt renders the persona's template.
func (s *Summarizer) prompt(transcript, persona string) string {
	tmpl, ok := s.cfg.PromptTemplates[persona]
	if !ok || tmpl == "" {
		tmpl = defaultPromptTemplate
	}
	out := strings.ReplaceAll(tmpl, "{persona}", displayName(persona))
	return strings.ReplaceAll(out, "{transcript}", transcript)
}

// displayName title-cases a persona identifier for use in prompts.
func displayName(persona string) string {
	if persona == "" {
		return "the assistant"
	}
	r := []rune(persona)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
