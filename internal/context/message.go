package ctxengine

import (
	"context"
	"time"

	"github.com/aeris-bot/aeris/internal/provider"
	"github.com/aeris-bot/aeris/internal/store"
)

// Message is the engine's in-memory representation of one context entry.
// It exists only for the duration of a single assembly and is never
// persisted directly.
type Message struct {
	Role      provider.MessageRole
	Content   string
	Timestamp time.Time
	Persona   string
	Metadata  map[string]string
}

// Metadata keys set on synthetic messages.
const (
	metaType         = "type"
	metaMessageCount = "message_count"
	metaFactCount    = "fact_count"

	typeSummary  = "summary"
	typeMemories = "memories"
)

// TokenCounter counts the tokens a piece of content consumes for a model.
// Implementations must be deterministic for the same input.
type TokenCounter interface {
	Count(content, model string) int
}

// SummarySource provides read access to persisted summaries.
type SummarySource interface {
	LatestSummaries(ctx context.Context, userID int64, persona string, limit int) ([]store.Summary, error)
}

// SummarySink persists newly created summaries.
type SummarySink interface {
	SaveSummary(ctx context.Context, s store.Summary) error
}

// Summarizer condenses a plain-text transcript into a short summary,
// speaking as the given persona.
type Summarizer interface {
	Summarize(ctx context.Context, transcript, persona string) (string, error)
}

// toWire converts engine messages to the wire-format role/content pairs
// consumed by the LLM client.
func toWire(msgs []Message) []provider.LLMMessage {
	out := make([]provider.LLMMessage, len(msgs))
	for i, m := range msgs {
		out[i] = provider.LLMMessage{Role: m.Role, Content: m.Content}
	}
	return out
}
