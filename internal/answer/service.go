package answer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lexhaven/lexrag/internal/domain"
)

// Service answers questions grounded in the vector index. The steps run
// strictly in sequence: embed, retrieve, optionally rerank and summarize,
// generate. A failure at any step aborts the request; there is no partial
// answer.
type Service struct {
	embedder   Embedder
	idx        Index
	generator  Generator
	topK       int
	reranker   Reranker
	summarizer Summarizer
	logger     *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithTopK overrides the number of chunks retrieved per question.
func WithTopK(k int) Option {
	return func(s *Service) { s.topK = k }
}

// WithReranker inserts a rerank step between retrieval and generation.
func WithReranker(r Reranker) Option {
	return func(s *Service) { s.reranker = r }
}

// WithSummarizer inserts a context-summarization step before generation.
// When set, the final answer uses the summarizer-flavored prompt pair.
func WithSummarizer(sum Summarizer) Option {
	return func(s *Service) { s.summarizer = sum }
}

// NewService creates an answering service. The default pipeline is the live
// chat one: top 5 chunks, no rerank, no summarization.
func NewService(embedder Embedder, idx Index, generator Generator, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		embedder:  embedder,
		idx:       idx,
		generator: generator,
		topK:      5,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Answer runs the full pipeline for one question and returns the generated
// text together with the exact context chunks it was grounded in.
func (s *Service) Answer(ctx context.Context, question string) (string, []string, error) {
	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return "", nil, fmt.Errorf("embed question: %w", err)
	}

	matches, err := s.idx.Query(ctx, vector, s.topK)
	if err != nil {
		return "", nil, fmt.Errorf("query index: %w", err)
	}

	chunks := make([]string, len(matches))
	for i, m := range matches {
		chunks[i] = m.Text
	}

	if s.reranker != nil {
		chunks, err = s.reranker.Rerank(ctx, question, chunks)
		if err != nil {
			return "", nil, fmt.Errorf("rerank: %w", err)
		}
	}

	s.logger.Debug("retrieved context",
		zap.String("question", question),
		zap.Int("chunks", len(chunks)),
	)

	text, err := s.generate(ctx, question, chunks)
	if err != nil {
		return "", nil, err
	}

	return text, chunks, nil
}

func (s *Service) generate(ctx context.Context, question string, chunks []string) (string, error) {
	if s.summarizer != nil {
		return s.generateSummarized(ctx, question, chunks)
	}

	contextString := noContext
	if len(chunks) > 0 {
		contextString = strings.Join(chunks, "\n\n")
	}

	text, err := s.generator.Complete(ctx, []domain.Turn{
		{Role: domain.RoleSystem, Content: legalSystemPrompt},
		{Role: domain.RoleUser, Content: userPrompt(question, contextString)},
	}, 0)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return text, nil
}

func (s *Service) generateSummarized(ctx context.Context, question string, chunks []string) (string, error) {
	return GroundedAnswer(ctx, s.generator, s.summarizer, question, chunks)
}

// GroundedAnswer condenses the chunks first, then asks for the final answer
// against the summary. Retrieval misses skip the summarizer and feed the
// fixed no-information context straight to the final prompt. The evaluation
// harness runs this stage over chunks it retrieved itself.
func GroundedAnswer(ctx context.Context, gen Generator, sum Summarizer, question string, chunks []string) (string, error) {
	contextString := noContext
	if len(chunks) > 0 {
		summary, err := sum.Summarize(ctx, question, chunks)
		if err != nil {
			return "", fmt.Errorf("summarize context: %w", err)
		}
		contextString = summary
	}

	text, err := gen.Complete(ctx, []domain.Turn{
		{Role: domain.RoleSystem, Content: finalAnswerSystemPrompt(question, contextString)},
		{Role: domain.RoleUser, Content: finalAnswerUserPrompt(question)},
	}, 0)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return strings.TrimSpace(text), nil
}
