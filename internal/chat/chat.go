// Package chat implements the conversation service: one inbound user
// message becomes a persisted turn, an assembled context, a model reply,
// and possibly a compacted summary.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	ctxengine "github.com/aeris-bot/aeris/internal/context"
	"github.com/aeris-bot/aeris/internal/provider"
	"github.com/aeris-bot/aeris/internal/store"
)

// MemorySource supplies pre-ranked long-term memory facts for a user.
// Implementations may return nil when nothing relevant exists.
type MemorySource interface {
	Facts(ctx context.Context, userID int64, persona string) ([]string, error)
}

// MemoryObserver is optionally implemented by a MemorySource that also
// learns from completed exchanges.
type MemoryObserver interface {
	Observe(ctx context.Context, userID int64, persona, userText, assistantText string)
}

// Config holds the conversation service knobs.
type Config struct {
	// DefaultPersona is used when a request carries no persona.
	DefaultPersona string `yaml:"default_persona"`

	// MaxReplyTokens bounds one model reply. Defaults to 1024.
	MaxReplyTokens int `yaml:"max_reply_tokens"`

	// Personas maps persona names to their system prompts. Unknown
	// personas get no system prompt.
	Personas map[string]string `yaml:"personas"`
}

func (cfg Config) withDefaults() Config {
	if cfg.DefaultPersona == "" {
		cfg.DefaultPersona = "aeris"
	}
	if cfg.MaxReplyTokens == 0 {
		cfg.MaxReplyTokens = 1024
	}
	if cfg.Personas == nil {
		cfg.Personas = defaultPersonas
	}
	return cfg
}

var defaultPersonas = map[string]string{
	"aeris": "You are Aeris, a warm and attentive companion. You remember what " +
		"the person tells you, answer in their language, and keep replies " +
		"conversational rather than encyclopedic.",
	"diana": "You are Diana, a sharp and playful companion. You tease a little, " +
		"stay curious about the person you talk to, and answer in their language.",
}

// Service orchestrates one conversation turn end to end.
type Service struct {
	cfg       Config
	store     store.Store
	assembler *ctxengine.Assembler
	trigger   *ctxengine.SummaryTrigger
	prov      provider.Provider
	memories  MemorySource
	logger    *slog.Logger
}

// NewService creates a conversation service. trigger and memories may be
// nil to disable compaction and memory injection respectively.
func NewService(cfg Config, st store.Store, assembler *ctxengine.Assembler, trigger *ctxengine.SummaryTrigger, prov provider.Provider, memories MemorySource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:       cfg.withDefaults(),
		store:     st,
		assembler: assembler,
		trigger:   trigger,
		prov:      prov,
		memories:  memories,
		logger:    logger,
	}
}

// Respond handles one inbound message and returns the assistant reply.
//
// The user turn is persisted first so it survives a downstream failure.
// History and memory lookups degrade to empty on storage errors; only the
// model call itself is allowed to fail the turn.
func (s *Service) Respond(ctx context.Context, userID int64, persona, text string) (string, error) {
	if persona == "" {
		persona = s.cfg.DefaultPersona
	}

	if err := s.store.AppendMessage(ctx, userID, persona, "user", text); err != nil {
		return "", fmt.Errorf("chat: persisting user message: %w", err)
	}

	records := s.history(ctx, userID, persona)
	if prompt, ok := s.cfg.Personas[persona]; ok && prompt != "" {
		system := store.Record{Role: "system", Content: prompt, Timestamp: time.Now()}
		records = append([]store.Record{system}, records...)
	}

	msgs := s.assembler.Assemble(ctx, ctxengine.Request{
		UserID:   userID,
		Persona:  persona,
		Records:  records,
		Memories: s.facts(ctx, userID, persona),
	})

	resp, err := s.prov.Complete(ctx, provider.CompletionRequest{
		Messages:  msgs,
		MaxTokens: s.cfg.MaxReplyTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat: completion for user %d: %w", userID, err)
	}

	if err := s.store.AppendMessage(ctx, userID, persona, "assistant", resp.Content); err != nil {
		s.logger.Warn("chat: persisting assistant reply failed",
			"user_id", userID, "persona", persona, "error", err)
	}

	if obs, ok := s.memories.(MemoryObserver); ok {
		obs.Observe(ctx, userID, persona, text, resp.Content)
	}

	s.maybeCompact(ctx, userID, persona)

	return resp.Content, nil
}

// history fetches the recent records feeding context assembly. Storage
// errors degrade to an empty history.
func (s *Service) history(ctx context.Context, userID int64, persona string) []store.Record {
	engineCfg := s.assembler.Config()
	n := engineCfg.WindowMessages
	if engineCfg.SummaryThreshold > n {
		n = engineCfg.SummaryThreshold
	}

	records, err := s.store.RecentMessages(ctx, userID, persona, n)
	if err != nil {
		s.logger.Warn("chat: history fetch failed, assembling without it",
			"user_id", userID, "persona", persona, "error", err)
		return nil
	}
	return records
}

// facts fetches memory snippets. Lookup errors degrade to none.
func (s *Service) facts(ctx context.Context, userID int64, persona string) []string {
	if s.memories == nil {
		return nil
	}
	facts, err := s.memories.Facts(ctx, userID, persona)
	if err != nil {
		s.logger.Warn("chat: memory lookup failed, assembling without facts",
			"user_id", userID, "persona", persona, "error", err)
		return nil
	}
	return facts
}

// maybeCompact fires the summary side pipeline every SummaryThreshold
// persisted messages. Compaction never affects the turn's outcome.
func (s *Service) maybeCompact(ctx context.Context, userID int64, persona string) {
	if s.trigger == nil {
		return
	}

	threshold := s.assembler.Config().SummaryThreshold
	if threshold <= 0 {
		return
	}

	count, err := s.store.MessageCount(ctx, userID, persona)
	if err != nil {
		s.logger.Warn("chat: message count failed, skipping compaction check",
			"user_id", userID, "persona", persona, "error", err)
		return
	}
	if count == 0 || count%threshold != 0 {
		return
	}

	window, err := s.store.RecentMessages(ctx, userID, persona, threshold)
	if err != nil {
		s.logger.Warn("chat: compaction window fetch failed",
			"user_id", userID, "persona", persona, "error", err)
		return
	}
	s.trigger.MaybeSummarize(ctx, userID, persona, window, false)
}
