// Package ctxengine implements the conversation context assembler: the
// component that turns unbounded persisted history, stored summaries, and
// injected long-term memories into a bounded, ordered, token-limited
// message list for one model request.
package ctxengine

import "fmt"

// Config holds the tuning knobs for the context engine.
type Config struct {
	// WindowMessages is the maximum number of dialogue turns (user and
	// assistant messages) retained by the sliding window.
	WindowMessages int `yaml:"window_messages"`

	// SummaryThreshold is the history length at which a new summary
	// is compacted from the most recent SummaryThreshold messages.
	SummaryThreshold int `yaml:"summary_threshold"`

	// MaxTokens is the hard token budget for one assembled context.
	MaxTokens int `yaml:"max_tokens"`

	// SummaryLimit is the number of persisted summaries prepended to
	// the dialogue.
	SummaryLimit int `yaml:"summary_limit"`

	// MaxMemoryFacts caps the number of long-term memory snippets merged
	// into the context.
	MaxMemoryFacts int `yaml:"max_memory_facts"`

	// Model is the model family passed to the token counter.
	Model string `yaml:"model"`

	// FallbackTail is the number of raw messages used by the degraded
	// rebuild when full assembly fails.
	FallbackTail int `yaml:"fallback_tail"`
}

// withDefaults returns a copy of cfg with zero-valued fields replaced by
// the reference defaults.
func (cfg Config) withDefaults() Config {
	if cfg.WindowMessages == 0 {
		cfg.WindowMessages = 20
	}
	if cfg.SummaryThreshold == 0 {
		cfg.SummaryThreshold = 30
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 3800
	}
	if cfg.SummaryLimit == 0 {
		cfg.SummaryLimit = 1
	}
	if cfg.MaxMemoryFacts == 0 {
		cfg.MaxMemoryFacts = 3
	}
	if cfg.Model == "" {
		cfg.Model = "gemini"
	}
	if cfg.FallbackTail == 0 {
		cfg.FallbackTail = 5
	}
	return cfg
}

// Validate checks the configuration for nonsensical values.
func (cfg Config) Validate() error {
	if cfg.WindowMessages < 0 {
		return fmt.Errorf("ctxengine: window_messages must be non-negative, got %d", cfg.WindowMessages)
	}
	if cfg.SummaryThreshold < 0 {
		return fmt.Errorf("ctxengine: summary_threshold must be non-negative, got %d", cfg.SummaryThreshold)
	}
	if cfg.MaxTokens < 0 {
		return fmt.Errorf("ctxengine: max_tokens must be non-negative, got %d", cfg.MaxTokens)
	}
	return nil
}
