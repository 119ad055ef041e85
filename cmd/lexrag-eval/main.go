// Command lexrag-eval runs the benchmark questions through the full answering
// pipeline and prints faithfulness and relevancy scores.
package main

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/lexhaven/lexrag/internal/answer"
	"github.com/lexhaven/lexrag/internal/config"
	"github.com/lexhaven/lexrag/internal/eval"
	redisIndex "github.com/lexhaven/lexrag/internal/index/redis"
	logpkg "github.com/lexhaven/lexrag/internal/logger"
	openaiTransport "github.com/lexhaven/lexrag/internal/transport/openai"
	"github.com/lexhaven/lexrag/internal/version"
)

func main() {
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

	logger.Info("Starting lexrag evaluation",
		zap.String("version", version.Version),
		zap.String("env", env),
		zap.String("retriever", cfg.Eval.Retriever),
	)

	embedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		Model:      cfg.OpenAI.EmbeddingModel,
		Dimensions: cfg.OpenAI.EmbeddingDimensions,
		Timeout:    time.Duration(cfg.OpenAI.EmbeddingTimeoutSec) * time.Second,
		Logger:     logger,
	})
	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.ChatModel,
		Logger:  logger,
	})
	summarizer := answer.NewLLMSummarizer(generator.WithModel(cfg.OpenAI.SummaryModel))

	ctx := context.Background()

	var retriever eval.Retriever
	switch cfg.Eval.Retriever {
	case "index":
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
		if err := store.WaitForReady(ctx, time.Duration(cfg.Index.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Vector index not ready", zap.Error(err))
		}
		retriever = eval.NewIndexRetriever(embedder, store, cfg.Answer.TopK)
	default:
		retriever = eval.NewFixtureRetriever(eval.Benchmark)
	}

	pipeline := eval.NewPipeline(retriever, generator, summarizer, cfg.Eval.TopN, logger)

	harness := eval.NewHarness(pipeline, eval.Benchmark, logger)
	report, err := harness.Run(ctx)
	if err != nil {
		logger.Fatal("Evaluation failed", zap.Error(err))
	}

	if err := report.Render(os.Stdout); err != nil {
		logger.Error("Failed to render report", zap.Error(err))
	}
	logger.Info("Evaluation complete",
		zap.Float64("mean_faithfulness", report.MeanFaithfulness),
		zap.Float64("mean_answer_relevancy", report.MeanRelevancy),
	)
}
