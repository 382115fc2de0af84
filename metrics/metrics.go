package metrics

import (
	"iter"
	"net/http"
	"strconv"
	"time"

	"github.com/poiesic/rankit/core"
	"github.com/poiesic/rankit/search"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SearchMetrics records search and ranking outcomes on its own registry.
type SearchMetrics struct {
	registry *prometheus.Registry

	searchesTotal   *prometheus.CounterVec
	fallbacksTotal  prometheus.Counter
	searchDuration  *prometheus.HistogramVec
	candidates      *prometheus.HistogramVec
	results         prometheus.Histogram
	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewSearchMetrics creates the collectors and registers them.
func NewSearchMetrics() *SearchMetrics {
	registry := prometheus.NewRegistry()

	searchesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rankit",
			Subsystem: "search",
			Name:      "searches_total",
			Help:      "Total number of searches by status.",
		},
		[]string{"status"},
	)

	fallbacksTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rankit",
			Subsystem: "search",
			Name:      "rank_fallbacks_total",
			Help:      "Total number of searches returned in lexical order because ranking failed.",
		},
	)

	searchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rankit",
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "End-to-end search duration in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"status"},
	)

	candidates := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rankit",
			Subsystem: "search",
			Name:      "candidates",
			Help:      "Number of candidates produced by each retrieval source.",
			Buckets:   []float64{0, 1, 3, 10, 30, 100, 300},
		},
		[]string{"source"},
	)

	results := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "rankit",
			Subsystem: "search",
			Name:      "results",
			Help:      "Number of records returned per search.",
			Buckets:   []float64{0, 1, 3, 5, 10, 25, 50, 100},
		},
	)

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rankit",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rankit",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	registry.MustRegister(
		searchesTotal,
		fallbacksTotal,
		searchDuration,
		candidates,
		results,
		requestTotal,
		requestDuration,
	)

	return &SearchMetrics{
		registry:        registry,
		searchesTotal:   searchesTotal,
		fallbacksTotal:  fallbacksTotal,
		searchDuration:  searchDuration,
		candidates:      candidates,
		results:         results,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *SearchMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordFailure counts a search that returned an error before Finish.
func (m *SearchMetrics) RecordFailure(start time.Time) {
	m.searchesTotal.WithLabelValues("error").Inc()
	m.searchDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
}

// Monitor returns a monitor for a single search. Monitors are not shared
// between searches.
func (m *SearchMetrics) Monitor() search.SearchMonitor {
	return &searchMonitor{metrics: m}
}

// Middleware records request counts and latency for next.
func (m *SearchMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(recorder.statusCode)).Inc()
		m.requestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

type searchMonitor struct {
	metrics *SearchMetrics
	start   time.Time
}

var _ search.SearchMonitor = (*searchMonitor)(nil)

func (s *searchMonitor) Start(_ string) {
	s.start = time.Now()
}

func (s *searchMonitor) AfterExpansion(_ *core.SemanticQuery) {}

func (s *searchMonitor) AfterLexicalSearch(hits int) {
	s.metrics.candidates.WithLabelValues("lexical").Observe(float64(hits))
}

func (s *searchMonitor) AfterVectorSearch(hits int) {
	s.metrics.candidates.WithLabelValues("vector").Observe(float64(hits))
}

func (s *searchMonitor) AfterCandidateMerge(ids iter.Seq[core.ID]) {
	n := 0
	for range ids {
		n++
	}
	s.metrics.candidates.WithLabelValues("merged").Observe(float64(n))
}

func (s *searchMonitor) Fallback(_ error) {
	s.metrics.fallbacksTotal.Inc()
}

func (s *searchMonitor) Finish(results *search.Results) {
	if s.start.IsZero() {
		s.start = time.Now()
	}
	s.metrics.searchesTotal.WithLabelValues("success").Inc()
	s.metrics.searchDuration.WithLabelValues("success").Observe(time.Since(s.start).Seconds())
	if results != nil {
		s.metrics.results.Observe(float64(len(results.Records)))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
