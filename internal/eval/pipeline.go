package eval

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lexhaven/lexrag/internal/answer"
)

// Pipeline is the benchmark answering path: retrieve, keep the top passages,
// summarize them, generate the final answer. It satisfies Answerer so the
// harness can score it.
type Pipeline struct {
	retriever  Retriever
	generator  answer.Generator
	summarizer answer.Summarizer
	topN       int
	logger     *zap.Logger
}

// NewPipeline creates the evaluation answering pipeline.
func NewPipeline(
	retriever Retriever,
	generator answer.Generator,
	summarizer answer.Summarizer,
	topN int,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		retriever:  retriever,
		generator:  generator,
		summarizer: summarizer,
		topN:       topN,
		logger:     logger,
	}
}

// Answer runs one question through the pipeline and returns the answer with
// the passages it was grounded in.
func (p *Pipeline) Answer(ctx context.Context, question string) (string, []string, error) {
	passages, err := p.retriever.Retrieve(ctx, question)
	if err != nil {
		return "", nil, fmt.Errorf("retrieve: %w", err)
	}

	passages, err = answer.TopN{N: p.topN}.Rerank(ctx, question, passages)
	if err != nil {
		return "", nil, fmt.Errorf("rerank: %w", err)
	}

	p.logger.Debug("passages retrieved",
		zap.String("question", question),
		zap.Int("passages", len(passages)),
	)

	text, err := answer.GroundedAnswer(ctx, p.generator, p.summarizer, question, passages)
	if err != nil {
		return "", nil, err
	}
	return text, passages, nil
}
