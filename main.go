package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"knowpilot/backend/internal/adapter/gemini"
	"knowpilot/backend/internal/adapter/ollama"
	wstore "knowpilot/backend/internal/adapter/weaviate"
	"knowpilot/backend/internal/app"
	"knowpilot/backend/internal/config"
	"knowpilot/backend/internal/logger"
	"knowpilot/backend/internal/vector"
)

func main() {
	// Initialize structured logger
	base := slog.NewJSONHandler(os.Stdout, nil)
	slog.SetDefault(slog.New(logger.NewContextHandler(base)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// 2. Infrastructure
	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		slog.Error("failed to bootstrap", "error", err)
		os.Exit(1)
	}
	defer deps.DB.Close()

	// 3. Model adapters
	embedder, err := gemini.NewEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbeddingModel)
	if err != nil {
		slog.Error("failed to create embedder", "error", err)
		os.Exit(1)
	}
	defer embedder.Close()

	llm, err := ollama.New(cfg.OllamaURL, cfg.ChatModel)
	if err != nil {
		slog.Error("failed to create chat client", "error", err)
		os.Exit(1)
	}

	// 4. Vector index
	store := wstore.NewStore(deps.Weaviate)
	state := vector.NewPostgresStateRepo(deps.DB)
	index := vector.NewIndex(store, state)

	// 5. Application
	application, err := app.New(cfg, deps.DB, index, embedder, llm, nil)
	if err != nil {
		slog.Error("failed to build application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
