// Package memory manages long-term facts about users: extraction from
// completed exchanges via the LLM, storage, and recall for context
// assembly.
package memory

import (
	"context"
	"time"
)

// Fact is a piece of long-term knowledge about one user.
type Fact struct {
	ID        string
	UserID    int64
	Persona   string
	Content   string
	CreatedAt time.Time
}

// Store manages long-term memory facts.
// Implementations must be safe for concurrent use.
type Store interface {
	// Index stores a new fact, or updates it when the ID already exists.
	Index(ctx context.Context, fact Fact) error

	// RecentFacts returns up to limit facts for (user, persona),
	// newest first. limit <= 0 returns everything.
	RecentFacts(ctx context.Context, userID int64, persona string, limit int) ([]Fact, error)

	// Search retrieves up to topK facts for (user, persona) whose content
	// matches the query.
	Search(ctx context.Context, userID int64, persona, query string, topK int) ([]Fact, error)

	// Delete removes a fact by ID.
	Delete(ctx context.Context, id string) error

	// Len returns the total number of stored facts.
	Len() int
}
