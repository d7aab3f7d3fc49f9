package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"newswatch/internal/bot"
	"newswatch/internal/config"
	"newswatch/internal/report"
	"newswatch/internal/scheduler"
	"newswatch/internal/server"
	"newswatch/internal/storage"
	"newswatch/internal/trigger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	rules, err := trigger.NewActive(cfg.TriggersPath, trigger.Options{Location: cfg.Location})
	if err != nil {
		log.Error("compile trigger file", "path", cfg.TriggersPath, "error", err)
		os.Exit(1)
	}
	log.Info("rules loaded", "path", cfg.TriggersPath, "rules", len(rules.Load()))

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	for _, url := range cfg.FeedURLs {
		if _, err := store.EnsureFeed(ctx, url); err != nil {
			log.Error("register feed", "url", url, "error", err)
			os.Exit(1)
		}
	}

	sched := scheduler.New(store, rules, []scheduler.Sink{report.NewConsole(os.Stdout, cfg.Location)}, log)
	sched.SetTickInterval(cfg.PollInterval)

	g, ctx := errgroup.WithContext(ctx)

	if cfg.TelegramEnabled() {
		b, err := bot.New(cfg.TelegramBotToken, store, cfg, rules, log)
		if err != nil {
			log.Error("create bot", "error", err)
			os.Exit(1)
		}
		b.SetChecker(sched)
		sched.AddSink(b)
		g.Go(func() error {
			b.Run(ctx)
			return nil
		})
	}

	if cfg.HTTPAddr != "" {
		srv := server.New(rules, store, sched, log)
		g.Go(func() error {
			return srv.Run(ctx, cfg.HTTPAddr)
		})
	}

	g.Go(func() error {
		reloadOnHangup(ctx, rules, log)
		return nil
	})

	g.Go(func() error {
		sched.Run(ctx)
		return nil
	})

	log.Info("starting newswatch",
		"feeds", len(cfg.FeedURLs),
		"interval", cfg.PollInterval,
		"telegram", cfg.TelegramEnabled(),
		"http", cfg.HTTPAddr,
	)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("newswatch stopped", "error", err)
		os.Exit(1)
	}

	log.Info("newswatch stopped")
}

// reloadOnHangup recompiles the trigger file on SIGHUP. A failed reload
// leaves the current rules in force.
func reloadOnHangup(ctx context.Context, rules *trigger.Active, log *slog.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := rules.Reload(); err != nil {
				log.Warn("reload rules, previous rules kept", "error", err)
				continue
			}
			log.Info("rules reloaded", "rules", len(rules.Load()))
		}
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
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
