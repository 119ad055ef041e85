// Package answer implements the retrieval-augmented answering pipeline:
// embed the question, retrieve grounding chunks from the vector index, and
// generate an answer constrained to the retrieved context.
package answer

import (
	"context"

	"github.com/lexhaven/lexrag/internal/domain"
	"github.com/lexhaven/lexrag/internal/index"
)

// Embedder produces a single query embedding.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Index is the retrieval capability the service depends on.
type Index interface {
	Query(ctx context.Context, vector []float32, topK int) ([]index.Match, error)
}

// Generator produces a completion from an ordered message sequence.
type Generator interface {
	Complete(ctx context.Context, messages []domain.Turn, temperature float32) (string, error)
}

// Speaker converts answer text to audio.
type Speaker interface {
	Speak(ctx context.Context, text string) ([]byte, error)
}

// Reranker reorders or filters retrieved chunks before they reach the
// generation prompt. Implementations must be deterministic.
type Reranker interface {
	Rerank(ctx context.Context, question string, chunks []string) ([]string, error)
}

// Summarizer condenses retrieved chunks into a compact factual context.
type Summarizer interface {
	Summarize(ctx context.Context, question string, chunks []string) (string, error)
}
