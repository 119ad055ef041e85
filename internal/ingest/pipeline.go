package ingest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lexhaven/lexrag/internal/domain"
	"github.com/lexhaven/lexrag/internal/index"
	"github.com/lexhaven/lexrag/internal/metrics"
)

// Embedder is the batched embedding capability consumed by the pipeline.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Config holds pipeline tuning knobs.
type Config struct {
	// Dimension is the embedding dimension the index is created with.
	Dimension int
	// EmbedBatchSize is the number of chunks per embedding request.
	EmbedBatchSize int
	// UpsertBatchSize is the number of records per index write; normally
	// smaller than EmbedBatchSize.
	UpsertBatchSize int
	// MaxConcurrent bounds the number of embedding batches in flight.
	MaxConcurrent int
	// MaxAttempts bounds embedding retries per batch, connection errors only.
	MaxAttempts int
	// InitialBackoff is the first retry delay; it doubles each attempt.
	InitialBackoff time.Duration
}

// Summary reports what a pipeline run did. DroppedBatches counts embedding
// batches permanently absent from the index after exhausting retries.
type Summary struct {
	Chunks         int
	Uploaded       int64
	DroppedBatches int64
	FailedUpserts  int64
}

// Pipeline embeds chunk batches and writes them to the vector index. A failed
// batch is dropped and counted, never fatal: an incomplete index is preferable
// to no index.
type Pipeline struct {
	embedder Embedder
	idx      index.Index
	cfg      Config
	logger   *zap.Logger
	sleep    func(ctx context.Context, d time.Duration)
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(embedder Embedder, idx index.Index, cfg Config, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		embedder: embedder,
		idx:      idx,
		cfg:      cfg,
		logger:   logger,
		sleep:    sleepContext,
	}
}

// Run ensures the index exists, then embeds and uploads all chunks with at
// most cfg.MaxConcurrent embedding batches in flight.
func (p *Pipeline) Run(ctx context.Context, chunks []domain.Chunk) (Summary, error) {
	if err := p.idx.EnsureIndex(ctx, p.cfg.Dimension); err != nil {
		return Summary{}, err
	}

	summary := Summary{Chunks: len(chunks)}
	if len(chunks) == 0 {
		return summary, nil
	}

	var uploaded, dropped, failedUpserts atomic.Int64

	sem := make(chan struct{}, p.cfg.MaxConcurrent)
	var wg sync.WaitGroup

	for start := 0; start < len(chunks); start += p.cfg.EmbedBatchSize {
		end := start + p.cfg.EmbedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			p.processBatch(ctx, batch, &uploaded, &dropped, &failedUpserts)
		}()
	}

	wg.Wait()

	summary.Uploaded = uploaded.Load()
	summary.DroppedBatches = dropped.Load()
	summary.FailedUpserts = failedUpserts.Load()
	return summary, nil
}

func (p *Pipeline) processBatch(
	ctx context.Context,
	batch []domain.Chunk,
	uploaded, dropped, failedUpserts *atomic.Int64,
) {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text
	}

	vectors, err := p.embedWithRetry(ctx, texts)
	if err != nil {
		// Availability over completeness: drop the batch, keep ingesting.
		dropped.Add(1)
		metrics.IngestBatchesDroppedTotal.Inc()
		p.logger.Warn("embedding batch dropped",
			zap.Int("chunks", len(batch)),
			zap.Int("max_attempts", p.cfg.MaxAttempts),
			zap.String("first_source", batch[0].Source),
			zap.Error(err),
		)
		return
	}

	records := make([]index.Record, len(batch))
	for i, c := range batch {
		records[i] = index.Record{
			ID:     uuid.NewString(),
			Vector: vectors[i],
			Source: c.Source,
			Text:   c.Text,
		}
	}

	// Upload sub-batches sequentially; a failed write is logged and skipped,
	// not retried.
	for start := 0; start < len(records); start += p.cfg.UpsertBatchSize {
		end := start + p.cfg.UpsertBatchSize
		if end > len(records) {
			end = len(records)
		}
		sub := records[start:end]

		if err := p.idx.Upsert(ctx, sub); err != nil {
			failedUpserts.Add(1)
			metrics.IngestUpsertFailuresTotal.Inc()
			p.logger.Error("upsert sub-batch failed",
				zap.Int("records", len(sub)),
				zap.Error(err),
			)
			continue
		}

		uploaded.Add(int64(len(sub)))
		metrics.IngestChunksUploadedTotal.Add(float64(len(sub)))
	}
}

// embedWithRetry retries connection-kind failures with exponential backoff.
// Any other failure is returned immediately.
func (p *Pipeline) embedWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	delay := p.cfg.InitialBackoff

	var lastErr error
	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		vectors, err := p.embedder.EmbedBatch(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		lastErr = err

		if !errors.Is(err, domain.ErrConnection) {
			return nil, err
		}
		if attempt == p.cfg.MaxAttempts {
			break
		}

		p.logger.Info("connection error, retrying embedding batch",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", p.cfg.MaxAttempts),
			zap.Duration("delay", delay),
		)
		p.sleep(ctx, delay)
		delay *= 2
	}

	return nil, lastErr
}

func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
