// Command lexrag-ingest loads PDFs from the data directory, chunks and embeds
// them, and uploads the vectors to the index.
package main

import (
	"context"
	"flag"
	"time"

	"go.uber.org/zap"

	"github.com/lexhaven/lexrag/internal/config"
	redisIndex "github.com/lexhaven/lexrag/internal/index/redis"
	"github.com/lexhaven/lexrag/internal/ingest"
	logpkg "github.com/lexhaven/lexrag/internal/logger"
	"github.com/lexhaven/lexrag/internal/metrics"
	openaiTransport "github.com/lexhaven/lexrag/internal/transport/openai"
	"github.com/lexhaven/lexrag/internal/version"
)

func main() {
	dataDir := flag.String("data", "", "directory of PDFs to ingest (overrides config)")
	flag.Parse()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	dir := cfg.Ingest.DataDir
	if *dataDir != "" {
		dir = *dataDir
	}

	logger.Info("Starting lexrag ingestion",
		zap.String("version", version.Version),
		zap.String("env", env),
		zap.String("data_dir", dir),
		zap.Int("chunk_size", cfg.Ingest.ChunkSize),
		zap.Int("chunk_overlap", cfg.Ingest.ChunkOverlap),
	)

	store, err := redisIndex.New(redisIndex.Config{
		Addrs:     cfg.Index.Addrs,
		Password:  cfg.Index.Password,
		IndexName: cfg.Index.Name,
		KeyPrefix: cfg.Index.KeyPrefix,
	})
	if err != nil {
		logger.Fatal("Failed to create index store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Index.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Vector index not ready", zap.Error(err))
	}

	metrics.Register()

	embedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		Model:      cfg.OpenAI.EmbeddingModel,
		Dimensions: cfg.OpenAI.EmbeddingDimensions,
		Timeout:    time.Duration(cfg.OpenAI.EmbeddingTimeoutSec) * time.Second,
		Logger:     logger,
	})

	docs, err := ingest.LoadDir(dir, logger)
	if err != nil {
		logger.Fatal("Failed to load documents", zap.Error(err))
	}
	logger.Info("Documents loaded", zap.Int("documents", len(docs)))

	splitter := ingest.NewSplitter(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	chunks := splitter.SplitAll(docs)
	logger.Info("Documents chunked", zap.Int("chunks", len(chunks)))

	pipeline := ingest.NewPipeline(embedder, store, ingest.Config{
		Dimension:       cfg.OpenAI.EmbeddingDimensions,
		EmbedBatchSize:  cfg.Ingest.EmbedBatchSize,
		UpsertBatchSize: cfg.Ingest.UpsertBatchSize,
		MaxConcurrent:   cfg.Ingest.MaxConcurrentRequests,
		MaxAttempts:     cfg.Ingest.MaxAttempts,
		InitialBackoff:  time.Duration(cfg.Ingest.InitialBackoffSec) * time.Second,
	}, logger)

	summary, err := pipeline.Run(ctx, chunks)
	if err != nil {
		logger.Fatal("Ingestion failed", zap.Error(err))
	}

	logger.Info("Ingestion complete",
		zap.Int("chunks", summary.Chunks),
		zap.Int64("uploaded", summary.Uploaded),
		zap.Int64("dropped_batches", summary.DroppedBatches),
		zap.Int64("failed_upserts", summary.FailedUpserts),
	)
	if summary.DroppedBatches > 0 || summary.FailedUpserts > 0 {
		logger.Warn("Index is incomplete; re-run ingestion to fill the gaps")
	}
}
