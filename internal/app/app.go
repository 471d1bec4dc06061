package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"knowpilot/backend/features/ask"
	"knowpilot/backend/features/stats"
	"knowpilot/backend/features/ticket"
	"knowpilot/backend/internal/answer"
	"knowpilot/backend/internal/config"
	"knowpilot/backend/internal/intent"
	"knowpilot/backend/internal/middleware"
	"knowpilot/backend/internal/vector"
)

// Embedder turns a question into a vector for retrieval.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Completer is the chat model shared by the classifier and the answer engine.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type App struct {
	Handler    http.Handler
	AskService *ask.Service

	port int
}

// Options carries optional collaborators; tests use it to swap the query
// logger for an in-memory one.
type Options struct {
	QueryLog *answer.QueryLogger
}

func New(
	cfg *config.Config,
	db *sql.DB,
	index *vector.Index,
	embedder Embedder,
	llm Completer,
	opts *Options,
) (*App, error) {
	llmTimeout := time.Duration(cfg.LLMTimeoutSeconds) * time.Second

	// Feature: Ticket
	ticketRepo := ticket.NewPostgresRepo(db)
	ticketService := ticket.NewService(ticketRepo)
	ticketHandler := ticket.NewHandler(ticketRepo)

	// Feature: Ask
	classifier := intent.NewClassifier(llm, llmTimeout)

	var queryLogger *answer.QueryLogger
	if opts != nil && opts.QueryLog != nil {
		queryLogger = opts.QueryLog
	} else {
		var err error
		queryLogger, err = answer.NewFileQueryLogger(cfg.QueryLogPath)
		if err != nil {
			slog.Warn("failed to create query logger, falling back to stdout", "error", err)
			queryLogger = answer.NewQueryLogger(os.Stdout)
		}
	}

	engine := answer.NewEngine(embedder, index, llm, cfg.RetrievalK, llmTimeout, queryLogger)
	askService := ask.NewService(classifier, engine, ticketService)
	askHandler := ask.NewHandler(askService)

	// Feature: Stats
	statsHandler := stats.NewHandler(ticketRepo, index)

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	// Routes
	mux := http.NewServeMux()

	mux.Handle("GET /ask", middleware.CorrelationID(enableCORS(askHandler.Ask)))

	mux.Handle("GET /tickets", middleware.CorrelationID(enableCORS(ticketHandler.List)))
	mux.Handle("GET /tickets/{id}", middleware.CorrelationID(enableCORS(ticketHandler.Get)))

	mux.Handle("GET /stats", middleware.CorrelationID(enableCORS(statsHandler.GetStats)))

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	return &App{
		Handler:    middleware.Metrics(mux),
		AskService: askService,
		port:       cfg.ServerPort,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.port),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
