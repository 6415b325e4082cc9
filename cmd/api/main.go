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

	"github.com/contexta-ai/contexta/internal/config"
	"github.com/contexta-ai/contexta/internal/core"
	"github.com/contexta-ai/contexta/internal/embed"
	"github.com/contexta-ai/contexta/internal/httpapi"
	"github.com/contexta-ai/contexta/internal/llm"
	"github.com/contexta-ai/contexta/internal/logger"
	"github.com/contexta-ai/contexta/internal/prompt"
	"github.com/contexta-ai/contexta/internal/query"
	"github.com/contexta-ai/contexta/internal/rag"
	"github.com/contexta-ai/contexta/internal/rerank"
	"github.com/contexta-ai/contexta/internal/telegram"
)

func main() {
	debug := flag.Bool("debug", false, "Enable debug logging")
	configPath := flag.String("config", "config.yaml", "Path to config file")
	flag.Parse()

	logger.Init(*debug)
	logger.Info("Starting query service...")

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

	store, err := buildStore(ctx, cfg, embedder.Dimension())
	if err != nil {
		logger.Error("Failed to initialize vector store: %v", err)
		os.Exit(1)
	}
	if err := store.EnsureCollection(ctx); err != nil {
		logger.Error("Failed to ensure collection: %v", err)
		os.Exit(1)
	}

	llmService, err := llm.NewOpenAIService(apiKey, cfg.OpenAI.ChatModel, timeout)
	if err != nil {
		logger.Error("Failed to initialize answer generator: %v", err)
		os.Exit(1)
	}

	service := query.NewService(embedder, store, rerank.NewScoreReranker(), prompt.NewRAGBuilder(), llmService)

	if cfg.Telegram.Enabled {
		token := cfg.TelegramToken()
		if token == "" {
			logger.Error("%s environment variable is required when Telegram is enabled", cfg.Telegram.TokenEnv)
			os.Exit(1)
		}
		bot, err := telegram.NewBot(token, service)
		if err != nil {
			logger.Error("Failed to initialize Telegram bot: %v", err)
			os.Exit(1)
		}
		logger.Info("Starting Telegram bot...")
		go bot.Start(ctx)
	}

	srv := &http.Server{
		Addr:    cfg.Server.APIAddr,
		Handler: httpapi.NewQueryServer(service, store, llmService, apiKey != "").Handler(),
	}
	go func() {
		logger.Info("Query API listening on %s (model %s)", cfg.Server.APIAddr, llmService.ModelName())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down query service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error: %v", err)
	}
	logger.Info("Query service stopped")
}

func buildStore(ctx context.Context, cfg *config.Config, dim int) (core.VectorStore, error) {
	if cfg.Store.Type == "memory" {
		logger.Info("Using in-memory vector store")
		return rag.NewMemoryStore(dim)
	}
	logger.Info("Connecting to Milvus at %s", cfg.MilvusAddr())
	return rag.NewMilvusStore(ctx, cfg.MilvusAddr(), cfg.Store.Milvus.Collection, dim)
}
