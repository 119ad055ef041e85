package eval

import (
	"context"
	"fmt"

	"github.com/lexhaven/lexrag/internal/index"
)

// Retriever fetches grounding passages for a benchmark question.
type Retriever interface {
	Retrieve(ctx context.Context, question string) ([]string, error)
}

// FixtureRetriever serves the benchmark's own passages. It isolates the
// generation and scoring stages from index quality.
type FixtureRetriever struct {
	passages map[string][]string
}

// NewFixtureRetriever builds a retriever over the given cases.
func NewFixtureRetriever(cases []Case) *FixtureRetriever {
	passages := make(map[string][]string, len(cases))
	for _, c := range cases {
		passages[c.Question] = c.Passages
	}
	return &FixtureRetriever{passages: passages}
}

// Retrieve returns the fixture passages for the question, or nothing for an
// unknown one.
func (f *FixtureRetriever) Retrieve(_ context.Context, question string) ([]string, error) {
	return f.passages[question], nil
}

// Embedder produces a single query embedding.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Index is the vector search capability behind IndexRetriever.
type Index interface {
	Query(ctx context.Context, vector []float32, topK int) ([]index.Match, error)
}

// IndexRetriever retrieves passages from the live vector index, exercising
// the same embed-and-search path as the chat service.
type IndexRetriever struct {
	embedder Embedder
	idx      Index
	topK     int
}

// NewIndexRetriever creates an index-backed retriever.
func NewIndexRetriever(embedder Embedder, idx Index, topK int) *IndexRetriever {
	return &IndexRetriever{embedder: embedder, idx: idx, topK: topK}
}

// Retrieve embeds the question and returns the top matching chunk texts.
func (r *IndexRetriever) Retrieve(ctx context.Context, question string) ([]string, error) {
	vector, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	matches, err := r.idx.Query(ctx, vector, r.topK)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.Text
	}
	return texts, nil
}
