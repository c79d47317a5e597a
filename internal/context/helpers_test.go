package ctxengine_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aeris-bot/aeris/internal/store"
)

// charCounter counts one token per byte of content.
type charCounter struct{}

func (charCounter) Count(content, _ string) int { return len(content) }

// fixedCounter returns a fixed cost per exact content string, falling
// back to byte length for anything unlisted.
type fixedCounter struct {
	costs map[string]int
}

func (c fixedCounter) Count(content, _ string) int {
	if cost, ok := c.costs[content]; ok {
		return cost
	}
	return len(content)
}

// panicCounter simulates an unexpected failure inside the pipeline.
type panicCounter struct{}

func (panicCounter) Count(_, _ string) int { panic("counter exploded") }

// stubSummarySource serves canned summaries or a fixed error.
type stubSummarySource struct {
	summaries []store.Summary
	err       error
	calls     int
}

func (s *stubSummarySource) LatestSummaries(_ context.Context, _ int64, _ string, limit int) ([]store.Summary, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if limit > 0 && limit < len(s.summaries) {
		return s.summaries[:limit], nil
	}
	return s.summaries, nil
}

// stubSummarizer implements ctxengine.Summarizer for tests.
type stubSummarizer struct {
	result         string
	err            error
	called         int
	lastTranscript string
	lastPersona    string
}

func (s *stubSummarizer) Summarize(_ context.Context, transcript, persona string) (string, error) {
	s.called++
	s.lastTranscript = transcript
	s.lastPersona = persona
	return s.result, s.err
}

// stubSink records saved summaries or fails with a fixed error.
type stubSink struct {
	mu    sync.Mutex
	saved []store.Summary
	err   error
}

func (s *stubSink) SaveSummary(_ context.Context, sum store.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, sum)
	return nil
}

// makeRecords creates n alternating user/assistant records one minute
// apart, starting at start.
func makeRecords(n int, start time.Time) []store.Record {
	recs := make([]store.Record, n)
	for i := range recs {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		recs[i] = store.Record{
			ID:        int64(i + 1),
			Role:      role,
			Content:   fmt.Sprintf("msg-%d", i),
			Timestamp: start.Add(time.Duration(i) * time.Minute),
			Persona:   "aeris",
		}
	}
	return recs
}

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
