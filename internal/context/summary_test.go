package ctxengine_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	ctxengine "github.com/aeris-bot/aeris/internal/context"
	"github.com/aeris-bot/aeris/internal/provider"
	"github.com/aeris-bot/aeris/internal/store"
)

func testSummary(end time.Time) store.Summary {
	return store.Summary{
		UserID:       7,
		Persona:      "aeris",
		SummaryText:  "We talked about sailing.",
		MessageCount: 30,
		PeriodStart:  end.Add(-time.Hour),
		PeriodEnd:    end,
	}
}

func TestSummaryInjector_PrependsSyntheticSystemMessage(t *testing.T) {
	t.Parallel()

	src := &stubSummarySource{summaries: []store.Summary{testSummary(baseTime)}}
	inj := ctxengine.NewSummaryInjector(src, 1, nil)

	dialogue := ctxengine.NewNormalizer(nil).Normalize(makeRecords(2, baseTime.Add(time.Hour)))
	out := inj.Inject(t.Context(), dialogue, 7, "aeris")

	if len(out) != 3 {
		t.Fatalf("len(out) = %d, want 3", len(out))
	}

	sum := out[0]
	if sum.Role != provider.MessageRoleSystem {
		t.Errorf("summary Role = %q, want system", sum.Role)
	}
	if !strings.Contains(sum.Content, "We talked about sailing.") {
		t.Errorf("summary content missing text: %q", sum.Content)
	}
	if !strings.Contains(sum.Content, "2025-06-01 11:00") {
		t.Errorf("summary header missing period start: %q", sum.Content)
	}
	if !sum.Timestamp.Equal(baseTime) {
		t.Errorf("summary Timestamp = %v, want period end %v", sum.Timestamp, baseTime)
	}
	if sum.Metadata["type"] != "summary" {
		t.Errorf("Metadata[type] = %q, want summary", sum.Metadata["type"])
	}
	if sum.Metadata["message_count"] != "30" {
		t.Errorf("Metadata[message_count] = %q, want 30", sum.Metadata["message_count"])
	}

	// Original dialogue follows unchanged.
	if out[1].Content != "msg-0" || out[2].Content != "msg-1" {
		t.Errorf("dialogue not preserved: %q, %q", out[1].Content, out[2].Content)
	}
}

func TestSummaryInjector_FailsOpenOnStoreError(t *testing.T) {
	t.Parallel()

	src := &stubSummarySource{err: errors.New("store down")}
	inj := ctxengine.NewSummaryInjector(src, 1, nil)

	dialogue := ctxengine.NewNormalizer(nil).Normalize(makeRecords(3, baseTime))
	out := inj.Inject(t.Context(), dialogue, 7, "aeris")

	if len(out) != 3 {
		t.Fatalf("len(out) = %d, want 3 (dialogue unchanged on fetch error)", len(out))
	}
}

func TestSummaryInjector_NoSummariesNoChange(t *testing.T) {
	t.Parallel()

	inj := ctxengine.NewSummaryInjector(&stubSummarySource{}, 1, nil)
	dialogue := ctxengine.NewNormalizer(nil).Normalize(makeRecords(2, baseTime))

	out := inj.Inject(t.Context(), dialogue, 7, "aeris")
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
}

func TestSummaryInjector_NilSourceDisablesInjection(t *testing.T) {
	t.Parallel()

	inj := ctxengine.NewSummaryInjector(nil, 1, nil)
	dialogue := ctxengine.NewNormalizer(nil).Normalize(makeRecords(2, baseTime))

	out := inj.Inject(t.Context(), dialogue, 7, "aeris")
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
}
