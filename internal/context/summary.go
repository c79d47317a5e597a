package ctxengine

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/aeris-bot/aeris/internal/provider"
)

// SummaryInjector prepends persisted conversation summaries to the
// dialogue as synthetic system messages.
type SummaryInjector struct {
	source SummarySource
	limit  int
	logger *slog.Logger
}

// NewSummaryInjector creates a SummaryInjector loading up to limit
// summaries per assembly. A nil source disables injection.
func NewSummaryInjector(source SummarySource, limit int, logger *slog.Logger) *SummaryInjector {
	if limit <= 0 {
		limit = 1
	}
	if logger == nil {
		logger = slog.New(nopHandler{})
	}
	return &SummaryInjector{source: source, limit: limit, logger: logger}
}

// Inject fetches the most recent summaries for (user, persona) and returns
// a new slice with them prepended, newest period first. Summary injection
// is an enhancement, never a hard dependency: on any store error the
// original dialogue is returned unchanged.
func (inj *SummaryInjector) Inject(ctx context.Context, msgs []Message, userID int64, persona string) []Message {
	if inj.source == nil {
		return msgs
	}

	summaries, err := inj.source.LatestSummaries(ctx, userID, persona, inj.limit)
	if err != nil {
		inj.logger.Warn("ctxengine: summary fetch failed, continuing without summaries",
			"user_id", userID, "persona", persona, "error", err)
		return msgs
	}
	if len(summaries) == 0 {
		return msgs
	}

	out := make([]Message, 0, len(summaries)+len(msgs))
	for _, s := range summaries {
		out = append(out, Message{
			Role: provider.MessageRoleSystem,
			Content: fmt.Sprintf("[Summary of the earlier conversation from %s]\n%s",
				s.PeriodStart.UTC().Format("2006-01-02 15:04"), s.SummaryText),
			// The summary stands in for everything up to the end of its
			// period, so it sorts and trims as if it were that recent.
			Timestamp: s.PeriodEnd.UTC(),
			Persona:   persona,
			Metadata: map[string]string{
				metaType:         typeSummary,
				metaMessageCount: strconv.Itoa(s.MessageCount),
			},
		})
	}
	return append(out, msgs...)
}
