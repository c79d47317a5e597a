// Package store defines the persistence interfaces for conversation
// history and context summaries, plus an in-memory implementation used
// in tests and ephemeral deployments.
package store

import (
	"context"
	"time"
)

// Record is a raw persisted dialogue message as read back from storage.
//
// Timestamp and CreatedAt are `any` on purpose: depending on the backend
// a row may carry a time.Time, an RFC 3339 string, or nothing at all.
// Interpretation (parsing, UTC normalization, fallbacks) belongs to the
// context engine's normalizer, not to the store.
type Record struct {
	ID        int64
	Role      string
	Content   string
	Timestamp any
	CreatedAt any
	Persona   string
	Metadata  map[string]string
}

// Summary is a persisted compaction of a block of older dialogue messages.
type Summary struct {
	ID           int64
	UserID       int64
	Persona      string
	SummaryText  string
	MessageCount int
	PeriodStart  time.Time
	PeriodEnd    time.Time
	TokensSaved  int
	CreatedAt    time.Time
}

// MessageStore manages per-user dialogue history.
// Implementations must be safe for concurrent use.
type MessageStore interface {
	// AppendMessage persists one dialogue turn.
	AppendMessage(ctx context.Context, userID int64, persona, role, content string) error

	// RecentMessages returns the n most recent messages for (user, persona)
	// in chronological order. n <= 0 returns everything.
	RecentMessages(ctx context.Context, userID int64, persona string, n int) ([]Record, error)

	// MessageCount returns the number of stored messages for (user, persona).
	MessageCount(ctx context.Context, userID int64, persona string) (int, error)
}

// SummaryStore manages persisted context summaries.
// Implementations must be safe for concurrent use.
type SummaryStore interface {
	// LatestSummaries returns up to limit summaries for (user, persona),
	// newest period_end first.
	LatestSummaries(ctx context.Context, userID int64, persona string, limit int) ([]Summary, error)

	// SaveSummary persists a new summary.
	SaveSummary(ctx context.Context, s Summary) error

	// DeleteSummariesBefore removes summaries whose period_end is older than
	// cutoff. persona == "" matches all personas. Returns the number deleted.
	DeleteSummariesBefore(ctx context.Context, userID int64, persona string, cutoff time.Time) (int, error)

	// ExpireSummaries removes summaries whose period_end is older than
	// cutoff across every user and persona. Returns the number deleted.
	ExpireSummaries(ctx context.Context, cutoff time.Time) (int, error)

	// SummaryCount returns the number of stored summaries for (user, persona).
	SummaryCount(ctx context.Context, userID int64, persona string) (int, error)
}

// Store combines message and summary persistence over one backend.
type Store interface {
	MessageStore
	SummaryStore
}
