package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"knowpilot/backend/internal/adapter/gemini"
	wstore "knowpilot/backend/internal/adapter/weaviate"
	"knowpilot/backend/internal/app"
	"knowpilot/backend/internal/config"
	"knowpilot/backend/internal/ingest"
	"knowpilot/backend/internal/logger"
	"knowpilot/backend/internal/text"
	"knowpilot/backend/internal/vector"
)

// Ingestion is a one-shot batch: load the corpus, chunk, embed, and swap the
// rebuilt index in. The serving process picks up the new index without a
// restart.
func main() {
	base := slog.NewJSONHandler(os.Stdout, nil)
	slog.SetDefault(slog.New(logger.NewContextHandler(base)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		slog.Error("failed to bootstrap", "error", err)
		os.Exit(1)
	}
	defer deps.DB.Close()

	embedder, err := gemini.NewEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbeddingModel)
	if err != nil {
		slog.Error("failed to create embedder", "error", err)
		os.Exit(1)
	}
	defer embedder.Close()

	splitter, err := text.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		slog.Error("invalid chunking config", "error", err)
		os.Exit(1)
	}

	store := wstore.NewStore(deps.Weaviate)
	state := vector.NewPostgresStateRepo(deps.DB)
	index := vector.NewIndex(store, state)

	loader := ingest.NewLoader(cfg.SourceDir)
	pipeline := ingest.NewPipeline(loader, splitter, embedder, index, cfg.EmbedBatch)

	if err := pipeline.Run(ctx); err != nil {
		if errors.Is(err, ingest.ErrNoDocuments) {
			slog.Error("no documents found, keeping previous index", "dir", cfg.SourceDir)
		} else {
			slog.Error("ingestion failed", "error", err)
		}
		os.Exit(1)
	}

	slog.Info("ingestion complete")
}
