package domain

// Chunk is a bounded span of source-document text used as the retrieval unit.
// Chunks are created during ingestion, embedded once, and stored immutably;
// re-ingestion creates new chunks with new identifiers.
type Chunk struct {
	Text     string
	Source   string
	Position int
}

// Document is the raw text extracted from one source file before chunking.
type Document struct {
	Source string
	Text   string
}
