package metrics

import "github.com/prometheus/client_golang/prometheus"

// Solr and indexing Prometheus metrics.
var (
	SolrRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "solrsync",
			Name:      "solr_requests_total",
			Help:      "Total number of Solr requests",
		},
		[]string{"op", "core", "status"},
	)

	SolrRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "solrsync",
			Name:      "solr_request_duration_seconds",
			Help:      "Solr request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"op", "core"},
	)

	SyncTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "solrsync",
			Name:      "sync_total",
			Help:      "Index sync attempts by operation and outcome",
		},
		[]string{"operation", "result"}, // "success" / "error" / "skipped"
	)

	DirtyIdentifiersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "solrsync",
			Name:      "dirty_identifiers_total",
			Help:      "Dirty record mutations by class, operation and action",
		},
		[]string{"class", "operation", "action"}, // "append" / "remove"
	)

	SearchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "solrsync",
			Name:      "search_total",
			Help:      "Search calls by index and outcome",
		},
		[]string{"index", "result"},
	)

	SpellcheckRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "solrsync",
			Name:      "spellcheck_retries_total",
			Help:      "Searches re-executed with a collated spellcheck suggestion",
		},
		[]string{"index"},
	)
)

var solrMetricsRegistered bool

// RegisterSolrMetrics registers Solr and indexing metrics. Must be called once from main.
func RegisterSolrMetrics() {
	if solrMetricsRegistered {
		return
	}
	prometheus.MustRegister(SolrRequestsTotal)
	prometheus.MustRegister(SolrRequestDuration)
	prometheus.MustRegister(SyncTotal)
	prometheus.MustRegister(DirtyIdentifiersTotal)
	prometheus.MustRegister(SearchTotal)
	prometheus.MustRegister(SpellcheckRetriesTotal)
	solrMetricsRegistered = true
}
