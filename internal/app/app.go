package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/UmutEmre17/cv-coverletter-agent/features/job"
	"github.com/UmutEmre17/cv-coverletter-agent/features/letter"
	"github.com/UmutEmre17/cv-coverletter-agent/features/resume"
	"github.com/UmutEmre17/cv-coverletter-agent/features/search"
	"github.com/UmutEmre17/cv-coverletter-agent/features/stats"
	"github.com/UmutEmre17/cv-coverletter-agent/internal/adapter/gemini"
	"github.com/UmutEmre17/cv-coverletter-agent/internal/agent"
	"github.com/UmutEmre17/cv-coverletter-agent/internal/config"
	"github.com/UmutEmre17/cv-coverletter-agent/internal/events"
	"github.com/UmutEmre17/cv-coverletter-agent/internal/middleware"
	"github.com/UmutEmre17/cv-coverletter-agent/internal/parser"
	"github.com/UmutEmre17/cv-coverletter-agent/internal/retrieval"
	"github.com/UmutEmre17/cv-coverletter-agent/internal/vector"
)

type App struct {
	Handler http.Handler
	port    int
}

func New(cfg *config.Config, gem *gemini.Client, indexes *vector.Manager, publisher *events.Publisher) *App {
	// Retrieval
	queryLogger, err := retrieval.NewFileQueryLogger(cfg.QueryLogPath)
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = retrieval.NewQueryLogger(os.Stdout)
	}
	retrievalService := retrieval.NewService(gem, indexes, queryLogger)

	// Pipeline
	pipeline := agent.New(gem, retrievalService, cfg.TextModel, cfg.TopKPerQuery, cfg.MaxEvidence)

	// Feature: Resume
	resumeService := resume.NewService(indexes, publisher, cfg.ChunkMaxChars, cfg.ChunkOverlap,
		parser.Options{PdftotextFallback: cfg.PdftotextFallback})
	resumeHandler := resume.NewHandler(resumeService, indexes, cfg.MaxUploadSizeMB)

	// Feature: Job
	jobService := job.NewService(gem, cfg.TextModel)
	jobHandler := job.NewHandler(jobService)

	// Feature: Letter
	letterService := letter.NewService(jobService, pipeline, publisher)
	letterHandler := letter.NewHandler(letterService)

	// Feature: Search & Stats
	searchHandler := search.NewHandler(retrievalService, indexes)
	statsHandler := stats.NewHandler(indexes)

	// Middleware: CORS for the web UI
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
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

	mux.Handle("POST /ingest-cv", middleware.CorrelationID(enableCORS(resumeHandler.Ingest)))
	mux.Handle("GET /cv/status", middleware.CorrelationID(enableCORS(resumeHandler.Status)))

	mux.Handle("POST /analyze-job", middleware.CorrelationID(enableCORS(jobHandler.Analyze)))
	mux.Handle("POST /generate-from-job-text", middleware.CorrelationID(enableCORS(letterHandler.Generate)))

	mux.Handle("POST /search", middleware.CorrelationID(enableCORS(searchHandler.Search)))
	mux.Handle("GET /stats", middleware.CorrelationID(enableCORS(statsHandler.GetStats)))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	return &App{Handler: mux, port: cfg.ServerPort}
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
