package memory

import (
	"errors"
	"fmt"
	"testing"
)

func TestInMemoryStore_IndexAndRecall(t *testing.T) {
	t.Parallel()

	s := NewInMemoryStore()
	ctx := t.Context()

	for i := range 5 {
		err := s.Index(ctx, Fact{
			ID:      fmt.Sprintf("f%d", i),
			UserID:  1,
			Persona: "aeris",
			Content: fmt.Sprintf("fact %d", i),
		})
		if err != nil {
			t.Fatalf("index: %v", err)
		}
	}

	facts, err := s.RecentFacts(ctx, 1, "aeris", 3)
	if err != nil {
		t.Fatalf("recall: %v", err)
	}
	if len(facts) != 3 {
		t.Fatalf("len = %d, want 3", len(facts))
	}
	if facts[0].Content != "fact 4" {
		t.Errorf("first fact = %q, want newest", facts[0].Content)
	}
}

func TestInMemoryStore_RecallIsolation(t *testing.T) {
	t.Parallel()

	s := NewInMemoryStore()
	ctx := t.Context()

	_ = s.Index(ctx, Fact{ID: "a", UserID: 1, Persona: "aeris", Content: "likes tea"})
	_ = s.Index(ctx, Fact{ID: "b", UserID: 1, Persona: "diana", Content: "likes coffee"})
	_ = s.Index(ctx, Fact{ID: "c", UserID: 2, Persona: "aeris", Content: "likes juice"})

	facts, _ := s.RecentFacts(ctx, 1, "aeris", 0)
	if len(facts) != 1 || facts[0].Content != "likes tea" {
		t.Errorf("facts = %+v, want only user 1 / aeris", facts)
	}
}

func TestInMemoryStore_IndexUpdatesExisting(t *testing.T) {
	t.Parallel()

	s := NewInMemoryStore()
	ctx := t.Context()

	_ = s.Index(ctx, Fact{ID: "a", UserID: 1, Persona: "aeris", Content: "old"})
	_ = s.Index(ctx, Fact{ID: "a", UserID: 1, Persona: "aeris", Content: "new"})

	if s.Len() != 1 {
		t.Fatalf("len = %d, want 1", s.Len())
	}
	facts, _ := s.RecentFacts(ctx, 1, "aeris", 0)
	if facts[0].Content != "new" {
		t.Errorf("content = %q, want updated value", facts[0].Content)
	}
}

func TestInMemoryStore_Search(t *testing.T) {
	t.Parallel()

	s := NewInMemoryStore()
	ctx := t.Context()

	_ = s.Index(ctx, Fact{ID: "a", UserID: 1, Persona: "aeris", Content: "Allergic to Cats"})
	_ = s.Index(ctx, Fact{ID: "b", UserID: 1, Persona: "aeris", Content: "Lives in Lyon"})

	facts, err := s.Search(ctx, 1, "aeris", "cats", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(facts) != 1 || facts[0].ID != "a" {
		t.Errorf("facts = %+v, want only the cats fact", facts)
	}

	facts, _ = s.Search(ctx, 2, "aeris", "cats", 10)
	if len(facts) != 0 {
		t.Errorf("search should not cross users: %+v", facts)
	}
}

func TestInMemoryStore_Delete(t *testing.T) {
	t.Parallel()

	s := NewInMemoryStore()
	ctx := t.Context()

	_ = s.Index(ctx, Fact{ID: "a", UserID: 1, Persona: "aeris", Content: "x"})

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("len = %d, want 0", s.Len())
	}

	if err := s.Delete(ctx, "a"); !errors.Is(err, ErrFactNotFound) {
		t.Errorf("err = %v, want ErrFactNotFound", err)
	}
}
