package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aeris-bot/aeris/internal/chat"
	"github.com/aeris-bot/aeris/internal/config"
	ctxengine "github.com/aeris-bot/aeris/internal/context"
	"github.com/aeris-bot/aeris/internal/cron"
	"github.com/aeris-bot/aeris/internal/gateway"
	"github.com/aeris-bot/aeris/internal/memory"
	memsqlite "github.com/aeris-bot/aeris/internal/memory/sqlite"
	"github.com/aeris-bot/aeris/internal/provider"
	"github.com/aeris-bot/aeris/internal/store"
	"github.com/aeris-bot/aeris/internal/store/sqlite"
	"github.com/aeris-bot/aeris/internal/summarizer"
	"github.com/aeris-bot/aeris/internal/tokens"
	"github.com/aeris-bot/aeris/modules/channel/telegram"
	"github.com/aeris-bot/aeris/modules/provider/anthropic"
	"github.com/aeris-bot/aeris/modules/provider/gemini"
)

const shutdownTimeout = 10 * time.Second

// run wires the configured components together, starts the enabled
// surfaces, and blocks until a termination signal arrives.
func run(cfg *config.Config) error {
	logger := newLogger(cfg.LogLevel)

	st, closeStore, err := openStore(cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	prov, err := newProvider(cfg.Provider, logger)
	if err != nil {
		return err
	}

	engineCfg := cfg.Context
	if engineCfg.Model == "" {
		engineCfg.Model = cfg.Provider.Model
	}

	counter := tokens.NewCounter()
	assembler := ctxengine.NewAssembler(engineCfg, counter, st, logger)
	summ := summarizer.New(prov, cfg.Summarizer, logger)
	trigger := ctxengine.NewSummaryTrigger(st, summ, counter, engineCfg, logger)

	factStore, closeFacts, err := openFactStore(cfg.Store)
	if err != nil {
		return err
	}
	defer closeFacts()

	memories := memory.NewManager(
		factStore,
		memory.NewLLMExtractor(prov),
		cfg.Context.MaxMemoryFacts,
		logger,
	)

	chatSvc := chat.NewService(chat.Config{
		DefaultPersona: cfg.DefaultPersona,
		Personas:       cfg.Personas,
	}, st, assembler, trigger, prov, memories, logger)

	var bot *telegram.Bot
	if cfg.Telegram.Token != "" {
		client := telegram.NewClient(cfg.Telegram.Token, cfg.Telegram.BaseURL)
		bot = telegram.NewBot(client, chatSvc, telegram.Config{
			Token:              cfg.Telegram.Token,
			BaseURL:            cfg.Telegram.BaseURL,
			PollTimeoutSeconds: cfg.Telegram.PollTimeoutSeconds,
		}, logger)
		bot.Start()
		logger.Info("telegram channel started")
	} else {
		logger.Warn("no telegram token configured, channel disabled")
	}

	var gw *gateway.Gateway
	if cfg.Gateway.Listen != "" {
		gw = gateway.New(gateway.Config{
			Listen:    cfg.Gateway.Listen,
			AuthToken: cfg.Gateway.AuthToken,
		}, st, prov, engineCfg, logger)
		if err := gw.Start(); err != nil {
			return err
		}
	}

	sched := cron.NewScheduler(logger)
	if cfg.Store.RetentionDays > 0 {
		job := &cron.SummaryRetentionJob{
			Store:         st,
			RetentionDays: cfg.Store.RetentionDays,
			Logger:        logger,
			ScheduleExpr:  cfg.Store.RetentionSchedule,
		}
		if err := sched.RegisterJob(job); err != nil {
			return err
		}
	}
	if err := sched.Start(); err != nil {
		return err
	}

	logger.Info("aeris started",
		"backend", cfg.Provider.Backend,
		"model", prov.ModelName(),
		"persona", cfg.DefaultPersona,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if bot != nil {
		bot.Stop()
	}
	if gw != nil {
		if err := gw.Stop(shutdownCtx); err != nil {
			logger.Error("gateway shutdown failed", "error", err)
		}
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		logger.Error("scheduler shutdown failed", "error", err)
	}

	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// openStore selects SQLite when a path is configured and the in-memory
// store otherwise.
func openStore(cfg config.StoreConfig) (store.Store, func(), error) {
	if cfg.Path == "" {
		return store.NewInMemoryStore(), func() {}, nil
	}
	s, err := sqlite.Open(cfg.Path)
	if err != nil {
		return nil, nil, err
	}
	return s, func() { _ = s.Close() }, nil
}

// openFactStore keeps long-term facts in the same SQLite file as the
// conversation history, or in memory when persistence is disabled.
func openFactStore(cfg config.StoreConfig) (memory.Store, func(), error) {
	if cfg.Path == "" {
		return memory.NewInMemoryStore(), func() {}, nil
	}
	s, err := memsqlite.Open(cfg.Path)
	if err != nil {
		return nil, nil, err
	}
	return s, func() { _ = s.Close() }, nil
}

func newProvider(cfg config.ProviderConfig, logger *slog.Logger) (provider.Provider, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	switch cfg.Backend {
	case "gemini":
		return gemini.New(gemini.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: timeout,
		}, logger), nil
	case "anthropic":
		return anthropic.New(anthropic.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: timeout,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown provider backend %q", cfg.Backend)
	}
}
