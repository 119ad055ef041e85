// Package metrics defines the lexrag Prometheus series.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lexrag",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lexrag",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"model"},
	)

	GenerationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lexrag",
			Name:      "generation_requests_total",
			Help:      "Total number of chat completion requests",
		},
		[]string{"model", "status"},
	)

	GenerationRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lexrag",
			Name:      "generation_request_duration_seconds",
			Help:      "Chat completion request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"model"},
	)

	// IngestBatchesDroppedTotal counts embedding batches abandoned after the
	// retry budget. Its chunks are permanently absent from the index, so data
	// loss must be visible to operators, not just a log line.
	IngestBatchesDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lexrag",
			Name:      "ingest_batches_dropped_total",
			Help:      "Embedding batches dropped after exhausting retries",
		},
	)

	IngestUpsertFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lexrag",
			Name:      "ingest_upsert_failures_total",
			Help:      "Upsert sub-batches skipped after a write failure",
		},
	)

	IngestChunksUploadedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lexrag",
			Name:      "ingest_chunks_uploaded_total",
			Help:      "Chunks successfully written to the vector index",
		},
	)
)

var registered bool

// Register registers the lexrag metrics. Must be called once from main.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(GenerationRequestsTotal)
	prometheus.MustRegister(GenerationRequestDuration)
	prometheus.MustRegister(IngestBatchesDroppedTotal)
	prometheus.MustRegister(IngestUpsertFailuresTotal)
	prometheus.MustRegister(IngestChunksUploadedTotal)
	registered = true
}
