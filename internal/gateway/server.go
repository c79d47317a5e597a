package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Public.
	r.Get("/health", g.handleHealth())
	r.Handle("/metrics", promhttp.Handler())

	// Admin endpoints. Not mounted when no auth token is configured.
	if g.config.AuthToken != "" {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(g.config.AuthToken))
			r.Get("/status", g.handleStatus())
			r.Get("/api/context/stats", g.handleContextStats())
		})
	}

	return r
}
