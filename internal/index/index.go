// Package index defines the vector index contract consumed by the ingestion
// and answering pipelines.
package index

import "context"

// Record is the unit persisted in the vector index: an opaque collision-free
// identifier, the embedding vector, and the metadata needed to use a retrieval
// hit without a second lookup.
type Record struct {
	ID     string
	Vector []float32
	Source string
	Text   string
}

// Match is one retrieval result entry. Matches are ordered by descending
// similarity score.
type Match struct {
	Text   string
	Source string
	Score  float64
}

// Index is the vector index capability. Implementations must treat records as
// append-only: re-ingestion writes new records, never updates in place.
type Index interface {
	// EnsureIndex creates the index with the given vector dimension and cosine
	// distance if it does not already exist. The dimension must match the
	// embedding provider exactly or queries return wrong-dimension errors.
	EnsureIndex(ctx context.Context, dimension int) error

	// Upsert writes records. Vectors must match the index dimension.
	Upsert(ctx context.Context, records []Record) error

	// Query returns up to topK nearest records with their metadata, ordered by
	// descending similarity.
	Query(ctx context.Context, vector []float32, topK int) ([]Match, error)
}
