package gateway

import (
	"encoding/json"
	"net/http"
	"time"
)

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	UptimeSeconds    int64  `json:"uptime_seconds"`
	Model            string `json:"model,omitempty"`
	WindowMessages   int    `json:"window_messages"`
	SummaryThreshold int    `json:"summary_threshold"`
	MaxTokens        int    `json:"max_tokens"`
}

// handleStatus returns an http.HandlerFunc for GET /status.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := StatusResponse{
			UptimeSeconds:    int64(time.Since(g.startedAt) / time.Second),
			WindowMessages:   g.engineCfg.WindowMessages,
			SummaryThreshold: g.engineCfg.SummaryThreshold,
			MaxTokens:        g.engineCfg.MaxTokens,
		}
		if g.prov != nil {
			resp.Model = g.prov.ModelName()
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
