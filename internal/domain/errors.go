package domain

import "errors"

var (
	// ErrConnection signals a transient connectivity failure to an external
	// provider. Ingestion retries these with backoff; live answering does not.
	ErrConnection = errors.New("provider connection error")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrAnswerProviderError signals an answer-generation provider failure.
	ErrAnswerProviderError = errors.New("answer provider error")
	// ErrIndexUnavailable signals a vector index failure.
	ErrIndexUnavailable = errors.New("vector index unavailable")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
)
