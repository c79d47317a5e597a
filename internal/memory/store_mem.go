package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrFactNotFound indicates the requested fact does not exist.
var ErrFactNotFound = errors.New("memory: fact not found")

// InMemoryStore is a thread-safe, in-memory implementation of Store.
// Search uses simple substring matching; a production implementation would
// use vector embeddings.
type InMemoryStore struct {
	mu    sync.RWMutex
	facts []Fact
	index map[string]int // id → index in facts slice
}

// NewInMemoryStore creates a new empty memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		index: make(map[string]int),
	}
}

// Compile-time interface check.
var _ Store = (*InMemoryStore)(nil)

// Index stores a new fact.
func (s *InMemoryStore) Index(_ context.Context, fact Fact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, exists := s.index[fact.ID]; exists {
		s.facts[i] = fact
		return nil
	}

	s.index[fact.ID] = len(s.facts)
	s.facts = append(s.facts, fact)
	return nil
}

// RecentFacts returns up to limit facts for (user, persona), newest first.
// Insertion order stands in for recency; CreatedAt within one batch is
// identical.
func (s *InMemoryStore) RecentFacts(_ context.Context, userID int64, persona string, limit int) ([]Fact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []Fact
	for i := len(s.facts) - 1; i >= 0; i-- {
		f := s.facts[i]
		if f.UserID != userID || f.Persona != persona {
			continue
		}
		results = append(results, f)
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results, nil
}

// Search retrieves up to topK facts for (user, persona) matching query as
// a case-insensitive substring.
func (s *InMemoryStore) Search(_ context.Context, userID int64, persona, query string, topK int) ([]Fact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if topK <= 0 {
		return nil, nil
	}

	queryLower := strings.ToLower(query)
	var results []Fact

	for i := range s.facts {
		f := s.facts[i]
		if f.UserID != userID || f.Persona != persona {
			continue
		}
		if strings.Contains(strings.ToLower(f.Content), queryLower) {
			results = append(results, f)
			if len(results) >= topK {
				break
			}
		}
	}
	return results, nil
}

// Delete removes a fact by ID.
func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.index[id]
	if !ok {
		return ErrFactNotFound
	}

	// Swap-delete with the last element.
	last := len(s.facts) - 1
	if idx != last {
		s.facts[idx] = s.facts[last]
		s.index[s.facts[idx].ID] = idx
	}
	s.facts = s.facts[:last]
	delete(s.index, id)

	return nil
}

// Len returns the total number of stored facts.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.facts)
}
