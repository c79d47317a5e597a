package gateway

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

// ContextStatsResponse is the JSON response for GET /api/context/stats.
type ContextStatsResponse struct {
	UserID        int64      `json:"user_id"`
	Persona       string     `json:"persona"`
	Messages      int        `json:"messages"`
	Summaries     int        `json:"summaries"`
	LatestSummary *time.Time `json:"latest_summary_end,omitempty"`
}

// handleContextStats reports per-conversation storage counters.
// Query params: user_id (required), persona (required).
func (g *Gateway) handleContextStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid or missing user_id", http.StatusBadRequest)
			return
		}
		persona := r.URL.Query().Get("persona")
		if persona == "" {
			http.Error(w, "missing persona", http.StatusBadRequest)
			return
		}

		ctx := r.Context()
		messages, err := g.store.MessageCount(ctx, userID, persona)
		if err != nil {
			g.logger.Error("stats: message count failed", "error", err)
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}
		summaries, err := g.store.SummaryCount(ctx, userID, persona)
		if err != nil {
			g.logger.Error("stats: summary count failed", "error", err)
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}

		resp := ContextStatsResponse{
			UserID:    userID,
			Persona:   persona,
			Messages:  messages,
			Summaries: summaries,
		}
		if latest, err := g.store.LatestSummaries(ctx, userID, persona, 1); err == nil && len(latest) > 0 {
			end := latest[0].PeriodEnd
			resp.LatestSummary = &end
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
