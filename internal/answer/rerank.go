package answer

import "context"

// TopN keeps the first n chunks in retrieval order. The index already sorts
// by descending similarity, so truncation is a rank-preserving rerank.
type TopN struct {
	N int
}

// Rerank returns at most N chunks, order unchanged.
func (t TopN) Rerank(_ context.Context, _ string, chunks []string) ([]string, error) {
	if len(chunks) <= t.N {
		return chunks, nil
	}
	return chunks[:t.N], nil
}
