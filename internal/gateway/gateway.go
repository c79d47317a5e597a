// Package gateway exposes the operational HTTP surface: health and
// Prometheus metrics publicly, conversation statistics behind bearer auth.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	ctxengine "github.com/aeris-bot/aeris/internal/context"
	"github.com/aeris-bot/aeris/internal/provider"
	"github.com/aeris-bot/aeris/internal/store"
)

// Gateway is the ops HTTP server.
type Gateway struct {
	config    Config
	engineCfg ctxengine.Config
	store     store.Store
	prov      provider.Provider
	logger    *slog.Logger
	server    *http.Server
	startedAt time.Time
}

// New creates a gateway. The store is required; prov may be nil when no
// backend is configured yet.
func New(cfg Config, st store.Store, prov provider.Provider, engineCfg ctxengine.Config, logger *slog.Logger) *Gateway {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		config:    cfg,
		engineCfg: engineCfg,
		store:     st,
		prov:      prov,
		logger:    logger,
	}
}

// Start binds the listen address and serves in a background goroutine.
func (g *Gateway) Start() error {
	g.startedAt = time.Now()

	g.server = &http.Server{
		Addr:         g.config.Listen,
		Handler:      g.buildRouter(),
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.config.Listen)
	if err != nil {
		return fmt.Errorf("gateway: listen on %s: %w", g.config.Listen, err)
	}

	go func() {
		g.logger.Info("gateway listening", "addr", g.config.Listen)
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Stop shuts the server down gracefully within the configured timeout.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return g.server.Shutdown(shutdownCtx)
}
