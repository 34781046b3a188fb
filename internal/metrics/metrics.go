package metrics

import "github.com/prometheus/client_golang/prometheus"

// Alignment Prometheus metrics.
var (
	PairsScored = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docalign",
			Name:      "pairs_scored_total",
			Help:      "Total document pairs scored by the pairwise scorer",
		},
	)

	PairsPruned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docalign",
			Name:      "pairs_pruned_total",
			Help:      "Total document pairs skipped by the length heuristic",
		},
	)

	PairsMatched = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docalign",
			Name:      "pairs_matched_total",
			Help:      "Total pairs accepted by the greedy index matcher",
		},
	)

	BatchesDispatched = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docalign",
			Name:      "score_batches_total",
			Help:      "Total worker-pool batches dispatched",
		},
	)

	BatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "docalign",
			Name:      "score_batch_duration_seconds",
			Help:      "Worker-pool batch duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		},
	)

	DocumentsLoaded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docalign",
			Name:      "documents_loaded_total",
			Help:      "Total documents loaded from the embedding store",
		},
		[]string{"side"},
	)
)

// Embedding Prometheus metrics.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docalign",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"provider", "model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docalign",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	EmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docalign",
			Name:      "embedding_tokens_total",
			Help:      "Total embedding tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)

	EmbeddingErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docalign",
			Name:      "embedding_errors_total",
			Help:      "Total embedding errors",
		},
		[]string{"provider", "model", "error_type"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docalign",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var registered bool

// Register registers all Prometheus metrics. Must be called once from main.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(PairsScored)
	prometheus.MustRegister(PairsPruned)
	prometheus.MustRegister(PairsMatched)
	prometheus.MustRegister(BatchesDispatched)
	prometheus.MustRegister(BatchDuration)
	prometheus.MustRegister(DocumentsLoaded)
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(EmbeddingTokensTotal)
	prometheus.MustRegister(EmbeddingErrorsTotal)
	prometheus.MustRegister(EmbeddingCacheTotal)
	registered = true
}
