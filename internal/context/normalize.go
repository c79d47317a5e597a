package ctxengine

import (
	"log/slog"
	"time"

	"github.com/aeris-bot/aeris/internal/provider"
	"github.com/aeris-bot/aeris/internal/store"
)

// timestampLayouts are tried in order when a record carries its timestamp
// as a string. Layouts without a zone are interpreted as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Normalizer converts raw persisted records into uniform Messages.
type Normalizer struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewNormalizer creates a Normalizer. A nil logger discards output.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.New(nopHandler{})
	}
	return &Normalizer{logger: logger, now: time.Now}
}

// Normalize converts records to Messages, preserving input order.
//
// Malformed records are tolerated, never fatal: a missing or unparseable
// timestamp falls back to the current time with a warning, an empty role
// defaults to user, and a record with nothing usable at all is skipped so
// one bad row cannot abort the whole context build.
func (n *Normalizer) Normalize(records []store.Record) []Message {
	out := make([]Message, 0, len(records))
	for i, rec := range records {
		if rec.Role == "" && rec.Content == "" && rec.Timestamp == nil && rec.CreatedAt == nil {
			n.logger.Warn("ctxengine: skipping empty record", "index", i, "id", rec.ID)
			continue
		}

		role := provider.MessageRole(rec.Role)
		switch role {
		case provider.MessageRoleSystem, provider.MessageRoleUser, provider.MessageRoleAssistant:
		case "":
			role = provider.MessageRoleUser
		default:
			n.logger.Warn("ctxengine: unknown role, treating as user", "index", i, "role", rec.Role)
			role = provider.MessageRoleUser
		}

		out = append(out, Message{
			Role:      role,
			Content:   rec.Content,
			Timestamp: n.resolveTimestamp(rec, i),
			Persona:   rec.Persona,
			Metadata:  rec.Metadata,
		})
	}
	return out
}

// resolveTimestamp extracts a UTC timestamp from a record, preferring the
// Timestamp field over CreatedAt. Absent or unparseable values fall back
// to the current time; the record itself is kept.
func (n *Normalizer) resolveTimestamp(rec store.Record, index int) time.Time {
	raw := rec.Timestamp
	if raw == nil {
		raw = rec.CreatedAt
	}

	switch v := raw.(type) {
	case nil:
		n.logger.Warn("ctxengine: record has no timestamp, using current time",
			"index", index, "id", rec.ID)
		return n.now().UTC()
	case time.Time:
		return v.UTC()
	case string:
		if ts, ok := parseTimestamp(v); ok {
			return ts
		}
		n.logger.Warn("ctxengine: unparseable timestamp, using current time",
			"index", index, "id", rec.ID, "value", v)
		return n.now().UTC()
	default:
		n.logger.Warn("ctxengine: unsupported timestamp type, using current time",
			"index", index, "id", rec.ID)
		return n.now().UTC()
	}
}

// parseTimestamp parses a timestamp string, assuming UTC when the value
// carries no zone.
func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}
