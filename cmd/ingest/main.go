package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/contexta-ai/contexta/internal/chunker"
	"github.com/contexta-ai/contexta/internal/config"
	"github.com/contexta-ai/contexta/internal/core"
	"github.com/contexta-ai/contexta/internal/embed"
	"github.com/contexta-ai/contexta/internal/httpapi"
	"github.com/contexta-ai/contexta/internal/ingest"
	"github.com/contexta-ai/contexta/internal/loader"
	"github.com/contexta-ai/contexta/internal/logger"
	"github.com/contexta-ai/contexta/internal/notify"
	"github.com/contexta-ai/contexta/internal/rag"
)

func main() {
	debug := flag.Bool("debug", false, "Enable debug logging")
	configPath := flag.String("config", "config.yaml", "Path to config file")
	flag.Parse()

	logger.Init(*debug)
	logger.Info("Starting ingestion service...")

	if err := godotenv.Load(); err != nil {
		logger.Info("Warning: No .env file found or error loading it")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	if cfg.LogLevel == "debug" {
		logger.Init(true)
	}

	apiKey := cfg.APIKey()
	if apiKey == "" {
		logger.Error("%s environment variable is required", cfg.OpenAI.APIKeyEnv)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	timeout := time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second
	embedder, err := embed.NewOpenAIEmbedder(apiKey, cfg.OpenAI.EmbeddingModel, timeout)
	if err != nil {
		logger.Error("Failed to initialize embedder: %v", err)
		os.Exit(1)
	}
	logger.Info("Embedder ready: model=%s dim=%d", cfg.OpenAI.EmbeddingModel, embedder.Dimension())

	store, err := buildStore(ctx, cfg, embedder.Dimension())
	if err != nil {
		logger.Error("Failed to initialize vector store: %v", err)
		os.Exit(1)
	}
	if err := store.EnsureCollection(ctx); err != nil {
		logger.Error("Failed to ensure collection: %v", err)
		os.Exit(1)
	}

	ch, err := chunker.NewWindowChunker(cfg.Chunker.MaxTokens, cfg.Chunker.Overlap)
	if err != nil {
		logger.Error("Invalid chunker configuration: %v", err)
		os.Exit(1)
	}

	notifier := notify.NewCallbackNotifier(
		notify.WithMaxRetries(cfg.Callback.MaxRetries),
		notify.WithBackoff(time.Duration(cfg.Callback.BackoffSecs)*time.Second),
		notify.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Callback.TimeoutSecs) * time.Second}),
	)

	pipeline := ingest.NewPipeline(loader.NewRegistry(), ch, embedder, store, notifier)

	srv := &http.Server{
		Addr:    cfg.Server.IngestAddr,
		Handler: httpapi.NewIngestServer(pipeline, store, apiKey != "").Handler(),
	}
	go func() {
		logger.Info("Ingestion API listening on %s", cfg.Server.IngestAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down ingestion service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error: %v", err)
	}
	logger.Info("Ingestion service stopped")
}

func buildStore(ctx context.Context, cfg *config.Config, dim int) (core.VectorStore, error) {
	if cfg.Store.Type == "memory" {
		logger.Info("Using in-memory vector store")
		return rag.NewMemoryStore(dim)
	}
	logger.Info("Connecting to Milvus at %s", cfg.MilvusAddr())
	return rag.NewMilvusStore(ctx, cfg.MilvusAddr(), cfg.Store.Milvus.Collection, dim)
}
