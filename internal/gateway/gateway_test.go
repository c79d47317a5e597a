package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ctxengine "github.com/aeris-bot/aeris/internal/context"
	"github.com/aeris-bot/aeris/internal/provider"
	"github.com/aeris-bot/aeris/internal/store"
)

// fakeProvider is a minimal provider for gateway tests.
type fakeProvider struct {
	model string
}

func (p *fakeProvider) Complete(_ context.Context, _ provider.CompletionRequest) (provider.CompletionResponse, error) {
	return provider.CompletionResponse{Content: "ok"}, nil
}

func (p *fakeProvider) ContextWindowSize() int { return 4096 }
func (p *fakeProvider) ModelName() string      { return p.model }

func newTestGateway(t *testing.T, cfg Config) (*Gateway, store.Store) {
	t.Helper()
	st := store.NewInMemoryStore()
	g := New(cfg, st, &fakeProvider{model: "gemini-2.0-flash"}, ctxengine.Config{
		WindowMessages:   20,
		SummaryThreshold: 30,
		MaxTokens:        3800,
	}, slog.Default())
	return g, st
}

func TestHealth(t *testing.T) {
	t.Parallel()

	g, _ := newTestGateway(t, Config{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	g.handleHealth().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
	if resp.Model != "gemini-2.0-flash" {
		t.Errorf("model = %q, want gemini-2.0-flash", resp.Model)
	}
}

func TestStatus_ReportsEngineConfig(t *testing.T) {
	t.Parallel()

	g, _ := newTestGateway(t, Config{})
	g.startedAt = time.Now().Add(-90 * time.Second)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rr := httptest.NewRecorder()
	g.handleStatus().ServeHTTP(rr, req)

	var resp StatusResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.WindowMessages != 20 || resp.SummaryThreshold != 30 || resp.MaxTokens != 3800 {
		t.Errorf("engine config not reported: %+v", resp)
	}
	if resp.UptimeSeconds < 89 {
		t.Errorf("uptime = %d, want >= 89", resp.UptimeSeconds)
	}
}

func TestAuth_BearerToken(t *testing.T) {
	t.Parallel()

	g, _ := newTestGateway(t, Config{AuthToken: "sekrit"})
	mux := g.buildRouter()

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"wrong scheme", "Basic sekrit", http.StatusUnauthorized},
		{"valid token", "Bearer sekrit", http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/status", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, req)

			if rr.Code != tc.want {
				t.Errorf("status = %d, want %d", rr.Code, tc.want)
			}
		})
	}
}

func TestAuth_AdminNotMountedWithoutToken(t *testing.T) {
	t.Parallel()

	g, _ := newTestGateway(t, Config{})
	mux := g.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestContextStats(t *testing.T) {
	t.Parallel()

	g, st := newTestGateway(t, Config{AuthToken: "sekrit"})
	ctx := t.Context()

	for range 3 {
		if err := st.AppendMessage(ctx, 42, "aeris", "user", "hello"); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	end := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := st.SaveSummary(ctx, store.Summary{UserID: 42, Persona: "aeris", PeriodEnd: end}); err != nil {
		t.Fatalf("save summary: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/context/stats?user_id=42&persona=aeris", nil)
	rr := httptest.NewRecorder()
	g.handleContextStats().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}

	var resp ContextStatsResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Messages != 3 {
		t.Errorf("messages = %d, want 3", resp.Messages)
	}
	if resp.Summaries != 1 {
		t.Errorf("summaries = %d, want 1", resp.Summaries)
	}
	if resp.LatestSummary == nil || !resp.LatestSummary.Equal(end) {
		t.Errorf("latest summary = %v, want %v", resp.LatestSummary, end)
	}
}

func TestContextStats_BadRequest(t *testing.T) {
	t.Parallel()

	g, _ := newTestGateway(t, Config{AuthToken: "sekrit"})

	for _, target := range []string{
		"/api/context/stats",
		"/api/context/stats?user_id=abc&persona=aeris",
		"/api/context/stats?user_id=42",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rr := httptest.NewRecorder()
		g.handleContextStats().ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rr.Code)
		}
	}
}
