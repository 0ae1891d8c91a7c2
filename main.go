package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/UmutEmre17/cv-coverletter-agent/internal/adapter/gemini"
	"github.com/UmutEmre17/cv-coverletter-agent/internal/app"
	"github.com/UmutEmre17/cv-coverletter-agent/internal/config"
	"github.com/UmutEmre17/cv-coverletter-agent/internal/events"
	"github.com/UmutEmre17/cv-coverletter-agent/internal/logger"
	"github.com/UmutEmre17/cv-coverletter-agent/internal/vector"
)

func main() {
	log := slog.New(logger.NewContextHandler(slog.NewJSONHandler(os.Stdout, nil)))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gem, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.EmbedModel)
	if err != nil {
		slog.Error("failed to create gemini client", "error", err)
		os.Exit(1)
	}
	defer gem.Close()

	indexes := vector.NewManager(gem, filepath.Join(cfg.DataDir, "index"))
	loaded, err := indexes.LoadFromDisk()
	if err != nil {
		slog.Error("failed to load persisted index", "error", err)
		os.Exit(1)
	}
	if loaded {
		slog.Info("index restored from disk", "chunks", indexes.ChunkCount())
	} else {
		slog.Info("no persisted index, starting cold")
	}

	publisher, err := events.NewPublisher(cfg.NSQDHost)
	if err != nil {
		slog.Error("failed to create event publisher", "error", err, "nsqd", cfg.NSQDHost)
		os.Exit(1)
	}
	defer publisher.Stop()

	a := app.New(cfg, gem, indexes, publisher)
	if err := a.Run(ctx); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
