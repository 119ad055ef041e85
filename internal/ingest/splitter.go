package ingest

import (
	"strings"

	"github.com/lexhaven/lexrag/internal/domain"
)

// Splitter cuts document text into overlapping rune windows. The overlap
// keeps sentences that straddle a chunk boundary whole in at least one chunk.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
}

// NewSplitter creates a splitter with the given chunk size and overlap, both
// in runes. Overlap must be smaller than size.
func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	return &Splitter{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// Split chunks one document. Position is the chunk's ordinal within the
// document; it exists only to drive the overlap window and is not persisted.
func (s *Splitter) Split(doc domain.Document) []domain.Chunk {
	runes := []rune(doc.Text)
	if len(runes) == 0 {
		return nil
	}

	step := s.chunkSize - s.chunkOverlap
	if step <= 0 {
		step = 1
	}

	var chunks []domain.Chunk
	position := 0
	for i := 0; i < len(runes); i += step {
		end := i + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		text := strings.TrimSpace(string(runes[i:end]))
		if text != "" {
			chunks = append(chunks, domain.Chunk{
				Text:     text,
				Source:   doc.Source,
				Position: position,
			})
			position++
		}

		if end >= len(runes) {
			break
		}
	}

	return chunks
}

// SplitAll chunks every document in order.
func (s *Splitter) SplitAll(docs []domain.Document) []domain.Chunk {
	var chunks []domain.Chunk
	for _, doc := range docs {
		chunks = append(chunks, s.Split(doc)...)
	}
	return chunks
}
