// Command courtwatch is the court streaming-board ingest-and-dispatch
// daemon.
//
// Usage:
//
//	courtwatch -config courtwatch.yaml   # load board URLs, push, and seed watchlists from YAML
//	courtwatch                           # fall back to environment variables
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/courtwatch"
	"github.com/hazyhaar/courtwatch/internal/broadcast"
	"github.com/hazyhaar/courtwatch/internal/push"
	"github.com/hazyhaar/courtwatch/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to courtwatch.yaml config file")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath); err != nil {
		logger.Error("courtwatch: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.BaseURL == "" || cfg.XHRURL == "" {
		return fmt.Errorf("courtwatch: COURT_BASE_URL and COURT_XHR_URL (or base_url/xhr_url) are required")
	}

	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := store.ApplySchema(db); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	pusher := buildPusher(*cfg, logger)
	broadcaster := buildBroadcaster(*cfg, logger)

	w := courtwatch.New(*cfg, db, logger, pusher, broadcaster)
	if err := w.SeedWatchlists(ctx, time.Now()); err != nil {
		logger.Warn("courtwatch: seed watchlists", "error", err)
	}

	w.Start(ctx)
	<-ctx.Done()
	w.Stop()
	return nil
}

func loadConfig(path string) (*courtwatch.Config, error) {
	if path != "" {
		return courtwatch.LoadConfigFile(path)
	}
	return courtwatch.LoadEnv(), nil
}

func buildPusher(cfg courtwatch.Config, logger *slog.Logger) push.Pusher {
	if cfg.Push.WebhookURL == "" {
		return nil
	}
	return push.NewWebhookPusher(cfg.Push.WebhookURL, push.WithLogger(logger))
}

func buildBroadcaster(cfg courtwatch.Config, logger *slog.Logger) broadcast.Broadcaster {
	if cfg.Push.BroadcastWebhookURL == "" {
		return nil
	}
	return broadcast.NewWebhookBroadcaster(cfg.Push.BroadcastWebhookURL, broadcast.WithLogger(logger))
}
