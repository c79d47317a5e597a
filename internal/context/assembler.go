package ctxengine

import (
	"context"
	"log/slog"
	"time"

	"github.com/aeris-bot/aeris/internal/provider"
	"github.com/aeris-bot/aeris/internal/store"
)

// apologyNotice is the terminal fallback when every assembly strategy
// fails. The user never sees an error from this subsystem, only a request
// to try again.
const apologyNotice = "Something went wrong while preparing the conversation context. Please try again."

// Request contains the inputs for one context assembly.
type Request struct {
	// UserID identifies the owning user in the summary store.
	UserID int64

	// Persona is the active AI character.
	Persona string

	// Records is the raw dialogue history, already in chronological order.
	Records []store.Record

	// Memories are pre-ranked long-term memory snippets to inject.
	// May be nil.
	Memories []string
}

// Assembler builds the model-ready context for one reply generation.
//
// The pipeline: normalize records, prepend persisted summaries, merge
// memory facts, trim the dialogue window, convert to wire format, and
// enforce the token budget. Assembly is stateless per call; all durable
// state lives in the summary store, so contexts for different users
// assemble concurrently without coordination.
type Assembler struct {
	cfg        Config
	normalizer *Normalizer
	summaries  *SummaryInjector
	optimizer  *Optimizer
	logger     *slog.Logger
	now        func() time.Time
}

// strategy produces a candidate context. Strategies are tried in order of
// decreasing fidelity; the first one that completes wins.
type strategy struct {
	name  string
	build func(ctx context.Context, req Request) []provider.LLMMessage
}

// NewAssembler creates an Assembler. summaries may be nil to disable
// summary injection; logger may be nil to discard output.
func NewAssembler(cfg Config, counter TokenCounter, summaries SummarySource, logger *slog.Logger) *Assembler {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.New(nopHandler{})
	}
	return &Assembler{
		cfg:        cfg,
		normalizer: NewNormalizer(logger),
		summaries:  NewSummaryInjector(summaries, cfg.SummaryLimit, logger),
		optimizer:  NewOptimizer(counter, cfg.Model, cfg.MaxTokens, logger),
		logger:     logger,
		now:        time.Now,
	}
}

// Assemble builds the ordered (role, content) list handed to the model.
//
// It never returns an error and never panics across its boundary: when
// the full pipeline fails unexpectedly, a reduced rebuild from the last
// few raw messages is attempted, and failing that a single static message
// is returned. The caller always gets something usable.
func (a *Assembler) Assemble(ctx context.Context, req Request) []provider.LLMMessage {
	assembliesTotal.Inc()

	strategies := []strategy{
		{name: "full", build: a.buildFull},
		{name: "tail", build: a.buildTail},
	}

	for i, s := range strategies {
		msgs, ok := a.run(ctx, s, req)
		if !ok {
			continue
		}
		if i > 0 {
			fallbacksTotal.WithLabelValues(s.name).Inc()
			a.logger.Warn("ctxengine: degraded assembly strategy used",
				"user_id", req.UserID, "persona", req.Persona, "strategy", s.name)
		}
		return msgs
	}

	fallbacksTotal.WithLabelValues("static").Inc()
	a.logger.Error("ctxengine: all assembly strategies failed",
		"user_id", req.UserID, "persona", req.Persona)
	return []provider.LLMMessage{{
		Role:    provider.MessageRoleUser,
		Content: apologyNotice,
	}}
}

// run executes one strategy, converting a panic into a failed attempt so
// no failure mode escapes the assembler's boundary.
func (a *Assembler) run(ctx context.Context, s strategy, req Request) (msgs []provider.LLMMessage, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("ctxengine: assembly strategy panicked",
				"user_id", req.UserID, "persona", req.Persona,
				"strategy", s.name, "panic", r)
			msgs, ok = nil, false
		}
	}()
	return s.build(ctx, req), true
}

// buildFull runs the complete pipeline.
func (a *Assembler) buildFull(ctx context.Context, req Request) []provider.LLMMessage {
	msgs := a.normalizer.Normalize(req.Records)
	msgs = a.summaries.Inject(ctx, msgs, req.UserID, req.Persona)
	msgs = MergeMemories(msgs, req.Memories, a.cfg.MaxMemoryFacts, req.Persona, a.now())
	msgs = TrimWindow(msgs, a.cfg.WindowMessages)

	out := a.optimizer.Optimize(toWire(msgs))
	a.logger.Info("ctxengine: context assembled",
		"user_id", req.UserID, "persona", req.Persona, "messages", len(out))
	return out
}

// buildTail is the reduced rebuild: the last few raw messages, windowed,
// with no summaries, memories, or budget optimization.
func (a *Assembler) buildTail(_ context.Context, req Request) []provider.LLMMessage {
	records := req.Records
	if len(records) > a.cfg.FallbackTail {
		records = records[len(records)-a.cfg.FallbackTail:]
	}
	msgs := a.normalizer.Normalize(records)
	return toWire(TrimWindow(msgs, a.cfg.WindowMessages))
}

// Config returns the effective configuration after defaulting.
func (a *Assembler) Config() Config {
	return a.cfg
}
