package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/aeris-bot/aeris/internal/provider"
)

// Extractor analyzes a completed exchange and returns facts about the
// user worth remembering, one string per fact.
type Extractor interface {
	Extract(ctx context.Context, userText, assistantText string) ([]string, error)
}

// LLMExtractor uses the LLM backend to identify facts in an exchange.
type LLMExtractor struct {
	provider provider.Provider
}

// NewLLMExtractor creates an extractor backed by the given provider.
func NewLLMExtractor(p provider.Provider) *LLMExtractor {
	return &LLMExtractor{provider: p}
}

// Compile-time interface check.
var _ Extractor = (*LLMExtractor)(nil)

const extractionPrompt = `Analyze the following exchange and extract important facts about the user.
Return one fact per line. If there are no facts worth remembering, return "NONE".
Only extract factual information (preferences, personal details, decisions, goals).

User: %s
Assistant: %s

Facts:`

// Extract analyzes an exchange. Returns nil (not an error) when nothing
// worth remembering is found.
func (e *LLMExtractor) Extract(ctx context.Context, userText, assistantText string) ([]string, error) {
	prompt := fmt.Sprintf(extractionPrompt, userText, assistantText)

	resp, err := e.provider.Complete(ctx, provider.CompletionRequest{
		Messages: []provider.LLMMessage{
			{Role: provider.MessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("memory: extraction failed: %w", err)
	}

	return parseExtractedFacts(resp.Content), nil
}

// parseExtractedFacts turns the LLM response into plain fact strings.
func parseExtractedFacts(response string) []string {
	if response == "" || response == "NONE" {
		return nil
	}

	var facts []string
	for _, line := range strings.Split(response, "\n") {
		line = trimBullet(strings.TrimSpace(line))
		if line == "" || line == "NONE" {
			continue
		}
		facts = append(facts, line)
	}
	return facts
}

// trimBullet removes leading bullet markers ("- ", "* ", "1. ", etc.).
func trimBullet(s string) string {
	if len(s) >= 2 && (s[0] == '-' || s[0] == '*') && s[1] == ' ' {
		return s[2:]
	}
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 && i+1 < len(s) && s[i] == '.' && s[i+1] == ' ' {
		return s[i+2:]
	}
	return s
}

// NopExtractor never extracts anything, for deployments with memory
// learning disabled.
type NopExtractor struct{}

// Compile-time interface check.
var _ Extractor = (*NopExtractor)(nil)

// Extract always returns no facts.
func (NopExtractor) Extract(_ context.Context, _, _ string) ([]string, error) {
	return nil, nil
}
