package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notevault/internal/config"
	"notevault/internal/embedding"
	"notevault/internal/http"
	"notevault/internal/queue"
	"notevault/internal/search"
	"notevault/internal/storage"
	"notevault/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	ctx := context.Background()

	// Initialize Qdrant vector store
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.VectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.VectorSize)

	// Initialize embedding provider (fail-fast probe against the model)
	provider := embedding.NewClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.VectorSize)
	if err := provider.Initialize(ctx); err != nil {
		log.Fatalf("Failed to initialize embedding provider: %v", err)
	}
	slog.Info("Embedding provider ready", "model", cfg.EmbeddingModelName, "dimensions", cfg.VectorSize)

	noteRepo := storage.NewNoteRepo(db, vectorStore, cfg.QdrantCollection)

	// Start the embedding queue
	embedQueue := queue.New(provider, noteRepo, cfg.MaxConcurrentJobs)
	embedQueue.Start(ctx)
	slog.Info("Embedding queue started", "max_concurrent", cfg.MaxConcurrentJobs)

	searcher := search.NewService(provider, noteRepo)

	deps := &http.Deps{
		Store:          noteRepo,
		Queue:          embedQueue,
		Searcher:       searcher,
		VectorStore:    vectorStore,
		Provider:       provider,
		CollectionName: cfg.QdrantCollection,
	}
	router := http.NewRouter(deps)

	server := &nethttp.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Starting API server", "addr", server.Addr)
		serverErr <- server.ListenAndServe()
	}()

	// Wait for a shutdown signal or server failure
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		slog.Info("Shutting down", "signal", sig.String())
	case err := <-serverErr:
		if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			log.Fatalf("API server failed: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown failed", "error", err)
	}
	if err := embedQueue.Shutdown(shutdownCtx); err != nil {
		slog.Error("Embedding queue shutdown failed", "error", err)
	}
	slog.Info("Shutdown complete")
}
