// Package memory implements an in-process vector index used by tests and the
// evaluation harness. Brute-force cosine similarity over a record slice.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/lexhaven/lexrag/internal/domain"
	"github.com/lexhaven/lexrag/internal/index"
)

// Compile-time check: Index implements index.Index.
var _ index.Index = (*Index)(nil)

// Index is an in-memory vector index.
type Index struct {
	mu        sync.RWMutex
	dimension int
	records   []index.Record
}

// New creates an empty in-memory index.
func New() *Index {
	return &Index{}
}

// EnsureIndex fixes the vector dimension. Calling it again with a different
// dimension is a mismatch.
func (x *Index) EnsureIndex(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return domain.ErrVectorDimMismatch
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if x.dimension != 0 && x.dimension != dimension {
		return domain.ErrVectorDimMismatch
	}
	x.dimension = dimension
	return nil
}

// Upsert appends records. Records never change in place; re-ingestion adds new
// records under new identifiers.
func (x *Index) Upsert(_ context.Context, records []index.Record) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	for _, rec := range records {
		if x.dimension != 0 && len(rec.Vector) != x.dimension {
			return domain.ErrVectorDimMismatch
		}
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		x.records = append(x.records, rec)
	}
	return nil
}

// Query returns the topK most similar records by cosine similarity, descending.
func (x *Index) Query(_ context.Context, vector []float32, topK int) ([]index.Match, error) {
	if x.dimension != 0 && len(vector) != x.dimension {
		return nil, domain.ErrVectorDimMismatch
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	matches := make([]index.Match, 0, len(x.records))
	for _, rec := range x.records {
		matches = append(matches, index.Match{
			Text:   rec.Text,
			Source: rec.Source,
			Score:  cosineSimilarity(vector, rec.Vector),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Len returns the number of stored records.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.records)
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
