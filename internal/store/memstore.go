package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// convKey identifies one (user, persona) conversation.
type convKey struct {
	userID  int64
	persona string
}

// conversation holds the messages and summaries for a single (user, persona).
type conversation struct {
	messages  []Record
	summaries []Summary
}

// InMemoryStore is a thread-safe, in-memory implementation of Store.
type InMemoryStore struct {
	mu     sync.RWMutex
	convs  map[convKey]*conversation
	nextID int64
}

// NewInMemoryStore creates a new empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		convs: make(map[convKey]*conversation),
	}
}

// Compile-time interface check.
var _ Store = (*InMemoryStore)(nil)

func (s *InMemoryStore) getOrCreate(userID int64, persona string) *conversation {
	k := convKey{userID: userID, persona: persona}
	c, ok := s.convs[k]
	if !ok {
		c = &conversation{}
		s.convs[k] = c
	}
	return c
}

// AppendMessage persists one dialogue turn.
func (s *InMemoryStore) AppendMessage(_ context.Context, userID int64, persona, role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.getOrCreate(userID, persona)
	s.nextID++
	c.messages = append(c.messages, Record{
		ID:        s.nextID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
		Persona:   persona,
	})
	return nil
}

// RecentMessages returns the n most recent messages in chronological order.
func (s *InMemoryStore) RecentMessages(_ context.Context, userID int64, persona string, n int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.convs[convKey{userID: userID, persona: persona}]
	if !ok {
		return nil, nil
	}

	msgs := c.messages
	if n > 0 && n < len(msgs) {
		msgs = msgs[len(msgs)-n:]
	}
	out := make([]Record, len(msgs))
	copy(out, msgs)
	return out, nil
}

// MessageCount returns the number of stored messages for (user, persona).
func (s *InMemoryStore) MessageCount(_ context.Context, userID int64, persona string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.convs[convKey{userID: userID, persona: persona}]
	if !ok {
		return 0, nil
	}
	return len(c.messages), nil
}

// LatestSummaries returns up to limit summaries, newest period_end first.
func (s *InMemoryStore) LatestSummaries(_ context.Context, userID int64, persona string, limit int) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.convs[convKey{userID: userID, persona: persona}]
	if !ok {
		return nil, nil
	}

	out := make([]Summary, len(c.summaries))
	copy(out, c.summaries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PeriodEnd.After(out[j].PeriodEnd)
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// SaveSummary persists a new summary.
func (s *InMemoryStore) SaveSummary(_ context.Context, sum Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.getOrCreate(sum.UserID, sum.Persona)
	s.nextID++
	sum.ID = s.nextID
	if sum.CreatedAt.IsZero() {
		sum.CreatedAt = time.Now().UTC()
	}
	c.summaries = append(c.summaries, sum)
	return nil
}

// DeleteSummariesBefore removes summaries with period_end older than cutoff.
func (s *InMemoryStore) DeleteSummariesBefore(_ context.Context, userID int64, persona string, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for k, c := range s.convs {
		if k.userID != userID {
			continue
		}
		if persona != "" && k.persona != persona {
			continue
		}
		kept := c.summaries[:0]
		for _, sum := range c.summaries {
			if sum.PeriodEnd.Before(cutoff) {
				deleted++
				continue
			}
			kept = append(kept, sum)
		}
		c.summaries = kept
	}
	return deleted, nil
}

// ExpireSummaries removes summaries with period_end older than cutoff
// across all conversations.
func (s *InMemoryStore) ExpireSummaries(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for _, c := range s.convs {
		kept := c.summaries[:0]
		for _, sum := range c.summaries {
			if sum.PeriodEnd.Before(cutoff) {
				deleted++
				continue
			}
			kept = append(kept, sum)
		}
		c.summaries = kept
	}
	return deleted, nil
}

// SummaryCount returns the number of stored summaries for (user, persona).
func (s *InMemoryStore) SummaryCount(_ context.Context, userID int64, persona string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.convs[convKey{userID: userID, persona: persona}]
	if !ok {
		return 0, nil
	}
	return len(c.summaries), nil
}
