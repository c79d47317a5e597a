package ctxengine_test

import (
	"fmt"
	"testing"

	ctxengine "github.com/aeris-bot/aeris/internal/context"
	"github.com/aeris-bot/aeris/internal/provider"
)

func TestTrimWindow_KeepsMostRecentTurns(t *testing.T) {
	t.Parallel()

	dialogue := ctxengine.NewNormalizer(nil).Normalize(makeRecords(25, baseTime))

	out := ctxengine.TrimWindow(dialogue, 20)

	if len(out) != 20 {
		t.Fatalf("len(out) = %d, want 20", len(out))
	}
	// The 5 oldest turns are gone, order preserved.
	for i, m := range out {
		want := fmt.Sprintf("msg-%d", i+5)
		if m.Content != want {
			t.Errorf("out[%d].Content = %q, want %q", i, m.Content, want)
		}
	}
}

func TestTrimWindow_SystemMessagesNeverTrimmed(t *testing.T) {
	t.Parallel()

	msgs := []ctxengine.Message{
		{Role: provider.MessageRoleSystem, Content: "summary"},
		{Role: provider.MessageRoleSystem, Content: "memories"},
	}
	msgs = append(msgs, ctxengine.NewNormalizer(nil).Normalize(makeRecords(30, baseTime))...)

	out := ctxengine.TrimWindow(msgs, 20)

	if len(out) != 22 {
		t.Fatalf("len(out) = %d, want 22 (2 system + 20 dialogue)", len(out))
	}
	if out[0].Content != "summary" || out[1].Content != "memories" {
		t.Errorf("system messages displaced or trimmed: %q, %q", out[0].Content, out[1].Content)
	}
	for _, m := range out[2:] {
		if m.Role == provider.MessageRoleSystem {
			t.Errorf("system message found inside dialogue partition: %q", m.Content)
		}
	}
}

func TestTrimWindow_UnderLimitUnchanged(t *testing.T) {
	t.Parallel()

	dialogue := ctxengine.NewNormalizer(nil).Normalize(makeRecords(5, baseTime))

	out := ctxengine.TrimWindow(dialogue, 20)
	if len(out) != 5 {
		t.Fatalf("len(out) = %d, want 5", len(out))
	}
}
