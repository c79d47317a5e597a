package ctxengine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aeris-bot/aeris/internal/store"
)

// SummaryTrigger decides when accumulated history must be compacted into
// a persisted summary and orchestrates that compaction. It runs as a side
// pipeline after a turn is persisted; the read path never depends on it.
type SummaryTrigger struct {
	sink       SummarySink
	summarizer Summarizer
	counter    TokenCounter
	cfg        Config
	logger     *slog.Logger
	now        func() time.Time
}

// NewSummaryTrigger creates a SummaryTrigger. counter may be nil, in which
// case the tokens-saved estimate is skipped.
func NewSummaryTrigger(sink SummarySink, summarizer Summarizer, counter TokenCounter, cfg Config, logger *slog.Logger) *SummaryTrigger {
	if logger == nil {
		logger = slog.New(nopHandler{})
	}
	return &SummaryTrigger{
		sink:       sink,
		summarizer: summarizer,
		counter:    counter,
		cfg:        cfg.withDefaults(),
		logger:     logger,
		now:        time.Now,
	}
}

// ShouldSummarize reports whether a history of the given length crosses
// the compaction threshold.
func (t *SummaryTrigger) ShouldSummarize(historyLen int) bool {
	return historyLen >= t.cfg.SummaryThreshold
}

// MaybeSummarize compacts the most recent SummaryThreshold messages into a
// persisted summary when the threshold is crossed (or force is set).
//
// Compaction is best-effort: summarizer and store failures are logged and
// swallowed, never returned, and no partial summary is ever stored. A
// missed compaction is retried naturally on the next threshold crossing.
// Returns true when a summary was persisted.
func (t *SummaryTrigger) MaybeSummarize(ctx context.Context, userID int64, persona string, history []store.Record, force bool) bool {
	if !force && !t.ShouldSummarize(len(history)) {
		return false
	}

	window := history
	if len(window) > t.cfg.SummaryThreshold {
		window = window[len(window)-t.cfg.SummaryThreshold:]
	}
	if len(window) == 0 {
		return false
	}

	transcript := buildTranscript(window)

	t.logger.Info("ctxengine: creating summary",
		"user_id", userID, "persona", persona, "messages", len(window))

	summary, err := t.summarizer.Summarize(ctx, transcript, persona)
	if err != nil {
		t.logger.Warn("ctxengine: summarization failed, skipping compaction",
			"user_id", userID, "persona", persona, "error", err)
		return false
	}
	if strings.TrimSpace(summary) == "" {
		t.logger.Warn("ctxengine: summarizer returned empty text, skipping compaction",
			"user_id", userID, "persona", persona)
		return false
	}

	start, end := t.periodBounds(window)

	tokensSaved := 0
	if t.counter != nil {
		tokensSaved = t.counter.Count(transcript, t.cfg.Model) - t.counter.Count(summary, t.cfg.Model)
		if tokensSaved < 0 {
			tokensSaved = 0
		}
	}

	err = t.sink.SaveSummary(ctx, store.Summary{
		UserID:       userID,
		Persona:      persona,
		SummaryText:  summary,
		MessageCount: len(window),
		PeriodStart:  start,
		PeriodEnd:    end,
		TokensSaved:  tokensSaved,
	})
	if err != nil {
		t.logger.Warn("ctxengine: summary persistence failed",
			"user_id", userID, "persona", persona, "error", err)
		return false
	}

	summariesCreatedTotal.Inc()
	summaryTokensSavedTotal.Add(float64(tokensSaved))
	t.logger.Info("ctxengine: summary persisted",
		"user_id", userID, "persona", persona,
		"message_count", len(window), "tokens_saved", tokensSaved)
	return true
}

// periodBounds resolves the compaction window's time range, normalized to
// UTC. Missing or unparseable bounds fall back to now-10m / now.
func (t *SummaryTrigger) periodBounds(window []store.Record) (start, end time.Time) {
	now := t.now().UTC()
	start = now.Add(-10 * time.Minute)
	end = now

	if ts, ok := recordTime(window[0]); ok {
		start = ts
	}
	if ts, ok := recordTime(window[len(window)-1]); ok {
		end = ts
	}
	if end.Before(start) {
		end = start
	}
	return start, end
}

// recordTime extracts a usable UTC timestamp from a raw record.
func recordTime(rec store.Record) (time.Time, bool) {
	raw := rec.Timestamp
	if raw == nil {
		raw = rec.CreatedAt
	}
	switch v := raw.(type) {
	case time.Time:
		return v.UTC(), true
	case string:
		return parseTimestamp(v)
	default:
		return time.Time{}, false
	}
}

// buildTranscript concatenates "role: content" lines in chronological order.
func buildTranscript(window []store.Record) string {
	var b strings.Builder
	for _, rec := range window {
		role := rec.Role
		if role == "" {
			role = "unknown"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, rec.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}
