package ctxengine_test

import (
	"strings"
	"testing"

	ctxengine "github.com/aeris-bot/aeris/internal/context"
	"github.com/aeris-bot/aeris/internal/provider"
)

func TestMergeMemories_CapsAtThreeLabeledFacts(t *testing.T) {
	t.Parallel()

	dialogue := ctxengine.NewNormalizer(nil).Normalize(makeRecords(2, baseTime))
	memories := []string{"likes jazz", "lives in Lisbon", "has a cat", "ignored fourth"}

	out := ctxengine.MergeMemories(dialogue, memories, 3, "aeris", baseTime)

	if len(out) != 3 {
		t.Fatalf("len(out) = %d, want 3", len(out))
	}

	mem := out[0]
	if mem.Role != provider.MessageRoleSystem {
		t.Errorf("memory Role = %q, want system", mem.Role)
	}
	for _, want := range []string{"Fact 1: likes jazz", "Fact 2: lives in Lisbon", "Fact 3: has a cat"} {
		if !strings.Contains(mem.Content, want) {
			t.Errorf("memory content missing %q: %q", want, mem.Content)
		}
	}
	if strings.Contains(mem.Content, "ignored fourth") {
		t.Errorf("fourth memory must not be injected: %q", mem.Content)
	}
	if mem.Metadata["fact_count"] != "3" {
		t.Errorf("Metadata[fact_count] = %q, want 3", mem.Metadata["fact_count"])
	}
}

func TestMergeMemories_InsertsAfterSystemPrefix(t *testing.T) {
	t.Parallel()

	msgs := []ctxengine.Message{
		{Role: provider.MessageRoleSystem, Content: "summary one"},
		{Role: provider.MessageRoleSystem, Content: "summary two"},
		{Role: provider.MessageRoleUser, Content: "hello"},
		{Role: provider.MessageRoleAssistant, Content: "hi"},
	}

	out := ctxengine.MergeMemories(msgs, []string{"fact"}, 3, "aeris", baseTime)

	if len(out) != 5 {
		t.Fatalf("len(out) = %d, want 5", len(out))
	}
	if out[0].Content != "summary one" || out[1].Content != "summary two" {
		t.Errorf("summaries displaced: %q, %q", out[0].Content, out[1].Content)
	}
	if out[2].Metadata["type"] != "memories" {
		t.Errorf("out[2] should be the memory message, got %q", out[2].Content)
	}
	if out[3].Content != "hello" || out[4].Content != "hi" {
		t.Errorf("dialogue displaced: %q, %q", out[3].Content, out[4].Content)
	}
}

func TestMergeMemories_AllSystemAppendsAtEnd(t *testing.T) {
	t.Parallel()

	msgs := []ctxengine.Message{
		{Role: provider.MessageRoleSystem, Content: "only summary"},
	}

	out := ctxengine.MergeMemories(msgs, []string{"fact"}, 3, "aeris", baseTime)

	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
	if out[1].Metadata["type"] != "memories" {
		t.Errorf("memory message should be appended last, got %q", out[1].Content)
	}
}

func TestMergeMemories_NoMemoriesNoSyntheticMessage(t *testing.T) {
	t.Parallel()

	dialogue := ctxengine.NewNormalizer(nil).Normalize(makeRecords(2, baseTime))

	out := ctxengine.MergeMemories(dialogue, nil, 3, "aeris", baseTime)
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2 (no empty memory message)", len(out))
	}
}

func TestMergeMemories_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	msgs := []ctxengine.Message{
		{Role: provider.MessageRoleUser, Content: "hello"},
		{Role: provider.MessageRoleAssistant, Content: "hi"},
	}

	_ = ctxengine.MergeMemories(msgs, []string{"fact"}, 3, "aeris", baseTime)

	if len(msgs) != 2 || msgs[0].Content != "hello" || msgs[1].Content != "hi" {
		t.Errorf("input slice was mutated: %+v", msgs)
	}
}
