package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

var factIDCounter atomic.Uint64

// Manager ties extraction and storage together and serves recall for
// context assembly. It satisfies both the chat service's memory source
// and observer roles.
type Manager struct {
	store     Store
	extractor Extractor
	maxFacts  int
	logger    *slog.Logger
	now       func() time.Time
}

// NewManager creates a Manager. maxFacts caps how many facts Facts
// returns; <= 0 means 3.
func NewManager(store Store, extractor Extractor, maxFacts int, logger *slog.Logger) *Manager {
	if maxFacts <= 0 {
		maxFacts = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	if extractor == nil {
		extractor = NopExtractor{}
	}
	return &Manager{
		store:     store,
		extractor: extractor,
		maxFacts:  maxFacts,
		logger:    logger,
		now:       time.Now,
	}
}

// Facts returns the newest fact contents for (user, persona).
func (m *Manager) Facts(ctx context.Context, userID int64, persona string) ([]string, error) {
	facts, err := m.store.RecentFacts(ctx, userID, persona, m.maxFacts)
	if err != nil {
		return nil, fmt.Errorf("memory: recall for user %d: %w", userID, err)
	}

	out := make([]string, 0, len(facts))
	for _, f := range facts {
		out = append(out, f.Content)
	}
	return out, nil
}

// Observe extracts and indexes facts from a completed exchange. It is
// best-effort: failures are logged, never returned.
func (m *Manager) Observe(ctx context.Context, userID int64, persona, userText, assistantText string) {
	facts, err := m.extractor.Extract(ctx, userText, assistantText)
	if err != nil {
		m.logger.Warn("memory: extraction failed",
			"user_id", userID, "persona", persona, "error", err)
		return
	}

	now := m.now().UTC()
	for _, content := range facts {
		fact := Fact{
			ID:        nextFactID(now),
			UserID:    userID,
			Persona:   persona,
			Content:   content,
			CreatedAt: now,
		}
		if err := m.store.Index(ctx, fact); err != nil {
			m.logger.Warn("memory: indexing fact failed",
				"user_id", userID, "persona", persona, "error", err)
		}
	}
}

func nextFactID(now time.Time) string {
	return fmt.Sprintf("%d-%d", now.UnixNano(), factIDCounter.Add(1))
}
