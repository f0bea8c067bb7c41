package main

import (
	"context"
	"flag"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"taxadvisor/internal/chunker"
	"taxadvisor/internal/config"
	"taxadvisor/internal/domain"
	"taxadvisor/internal/embedding/openai"
	"taxadvisor/internal/embedding/tfidf"
	"taxadvisor/internal/explain"
	"taxadvisor/internal/ingest"
	"taxadvisor/internal/llm/gemini"
	"taxadvisor/internal/logger"
	"taxadvisor/internal/notify"
	"taxadvisor/internal/retrieval"
	"taxadvisor/internal/server"
	"taxadvisor/internal/vectorstore/memory"
	"taxadvisor/internal/vectorstore/qdrant"
)

func main() {
	_ = godotenv.Load()
	logger.InitLogger()
	defer func() { _ = logger.Sync() }()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/taxadvisor/config.yaml if not provided)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// Assemble components
	var emb domain.Embedder
	switch cfg.Embedder.Type {
	case "tfidf", "":
		emb = tfidf.NewEmbedder()
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			logger.Fatal("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			logger.Fatal("openai embedder init failed", zap.Error(err))
		}
		emb = client
	default:
		logger.Fatal("unknown embedder", zap.String("type", cfg.Embedder.Type))
	}

	var store domain.VectorStore
	retrievalEndpoint := "memory"
	switch cfg.VectorStore.Type {
	case "memory", "":
		store = memory.NewStorage()
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			logger.Fatal("qdrant config missing")
		}
		store = qdrant.NewStorage(qdrant.Config{
			URL:        cfg.VectorStore.Qdrant.URL,
			APIKey:     cfg.VectorStore.Qdrant.APIKey,
			Collection: cfg.VectorStore.Qdrant.Collection,
			Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		})
		retrievalEndpoint = cfg.VectorStore.Qdrant.URL
	default:
		logger.Fatal("unknown vector store", zap.String("type", cfg.VectorStore.Type))
	}

	// Generation is optional: without a credential the API still serves
	// deterministic numbers with a placeholder summary.
	var generator domain.Generator
	genClient, err := gemini.NewClient(gemini.Config{
		BaseURL:   cfg.Generator.BaseURL,
		APIKeyEnv: cfg.Generator.APIKeyEnv,
		Timeout:   time.Duration(cfg.Generator.RequestTimeoutSecs) * time.Second,
	})
	if err != nil {
		logger.Warn("generation unconfigured, explanations will be placeholders", zap.Error(err))
	} else {
		generator = genClient
	}

	var notifier domain.Notifier
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.Notify.WebhookURL, time.Duration(cfg.Notify.TimeoutSecs)*time.Second)
	}

	ingester := ingest.NewService(
		chunker.NewSentenceChunker(cfg.Ingest.SentencesPerChunk, cfg.Ingest.OverlapSentences),
		emb, store,
	)
	if cfg.Ingest.Dir != "" {
		res, err := ingester.IngestDir(context.Background(), cfg.Ingest.Dir)
		if err != nil {
			logger.Fatal("startup ingestion failed", zap.Error(err))
		}
		logger.Info("corpus ingested",
			zap.Int("documents", res.Documents), zap.Int("chunks", res.Chunks))
	}

	orchestrator := explain.NewOrchestrator(
		retrieval.NewClient(emb, store),
		generator,
		notifier,
		explain.Options{
			Models:              cfg.Generator.Models,
			MaxAttemptsPerModel: cfg.Generator.MaxAttempts,
			DefaultRetryDelay:   time.Duration(cfg.Generator.DefaultRetrySecs) * time.Second,
			TopK:                cfg.Retrieval.TopK,
		},
		logger.Log,
	)

	handler := server.NewHandler(orchestrator, ingester, server.StatusInfo{
		GenerationConfigured:   generator != nil,
		RetrievalEndpoint:      retrievalEndpoint,
		NotificationConfigured: notifier != nil,
	}, time.Duration(cfg.Server.RequestTimeoutSecs)*time.Second)

	router := server.NewRouter(server.Config{AllowedOrigins: cfg.Server.AllowedOrigins}, handler)
	logger.Info("listening", zap.String("addr", cfg.Server.Addr))
	if err := router.Run(cfg.Server.Addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
