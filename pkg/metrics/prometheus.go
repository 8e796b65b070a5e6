package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Breaker states as reported by the distance circuit breaker.
var breakerStates = []string{"closed", "half-open", "open"}

// Manager owns every Prometheus collector of the matching engine.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	constLabels    map[string]string
	registry       prometheus.Registerer

	// Ranking
	rankRequests        *prometheus.CounterVec
	rankDuration        prometheus.Histogram
	candidatesEvaluated prometheus.Counter
	candidatesReturned  prometheus.Histogram
	filterRejections    *prometheus.CounterVec
	scoreDistribution   *prometheus.HistogramVec

	// Ledger
	likes            *prometheus.CounterVec
	ownerInterests   *prometheus.CounterVec
	matchesCreated   *prometheus.CounterVec
	promotionSkipped *prometheus.CounterVec

	// Distance provider
	distanceFailures     *prometheus.CounterVec
	distanceBreakerState *prometheus.GaugeVec

	// Storage
	storeLatency *prometheus.HistogramVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "paddock",
		subsystem:      "matching",
		latencyBuckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		constLabels:    map[string]string{},
		registry:       prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.rankRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "rank_requests_total",
		Help: "Ranking requests by outcome (ok, profile_required, error)",
	}, []string{"outcome"})

	m.rankDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    "rank_duration_milliseconds",
		Help:    "Time spent producing one ranked candidate list",
		Buckets: m.latencyBuckets,
	})

	m.candidatesEvaluated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "candidates_evaluated_total",
		Help: "Listings run through the eligibility filter",
	})

	m.candidatesReturned = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    "candidates_returned",
		Help:    "Number of candidates returned per ranking request",
		Buckets: []float64{0, 1, 5, 10, 20, 50},
	})

	m.filterRejections = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "filter_rejections_total",
		Help: "Candidates excluded by a hard eligibility rule",
	}, []string{"rule"})

	m.scoreDistribution = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    "compatibility_score",
		Help:    "Compatibility scores produced, by strategy",
		Buckets: prometheus.LinearBuckets(10, 10, 10),
	}, []string{"strategy"})

	m.likes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "likes_total",
		Help: "Like registrations by result (created, duplicate, not_found, error)",
	}, []string{"result"})

	m.ownerInterests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "owner_interests_total",
		Help: "Owner interest registrations by result",
	}, []string{"result"})

	m.matchesCreated = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "mutual_matches_created_total",
		Help: "Mutual matches created, by scoring strategy",
	}, []string{"strategy"})

	m.promotionSkipped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "promotion_skipped_total",
		Help: "Promotion attempts that created nothing (not_reciprocal, exists)",
	}, []string{"reason"})

	m.distanceFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "distance_failures_total",
		Help: "Distance lookups that degraded to unknown, by reason",
	}, []string{"reason"})

	m.distanceBreakerState = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "distance_breaker_state",
		Help: "1 for the current distance circuit breaker state, 0 otherwise",
	}, []string{"state"})

	m.storeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    "store_operation_duration_milliseconds",
		Help:    "Repository operation latency",
		Buckets: m.latencyBuckets,
	}, []string{"store", "op"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "http_requests_total",
		Help: "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.latencyBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "errors_by_endpoint_total",
		Help: "HTTP error responses by endpoint and error type",
	}, []string{"endpoint", "method", "error_type"})
}

// RecordRankRequest counts one ranking request and its latency.
func RecordRankRequest(outcome string, durationMs float64) {
	globalManager.rankRequests.WithLabelValues(outcome).Inc()
	globalManager.rankDuration.Observe(durationMs)
}

// RecordCandidatesEvaluated adds n evaluated candidates.
func RecordCandidatesEvaluated(n int) {
	globalManager.candidatesEvaluated.Add(float64(n))
}

// RecordCandidatesReturned observes the size of a ranked result.
func RecordCandidatesReturned(n int) {
	globalManager.candidatesReturned.Observe(float64(n))
}

// RecordFilterRejection counts a candidate excluded by rule.
func RecordFilterRejection(rule string) {
	globalManager.filterRejections.WithLabelValues(rule).Inc()
}

// RecordScore observes a compatibility score.
func RecordScore(strategy string, score float64) {
	globalManager.scoreDistribution.WithLabelValues(strategy).Observe(score)
}

// RecordLike counts a like registration result.
func RecordLike(result string) {
	globalManager.likes.WithLabelValues(result).Inc()
}

// RecordOwnerInterest counts an owner interest registration result.
func RecordOwnerInterest(result string) {
	globalManager.ownerInterests.WithLabelValues(result).Inc()
}

// RecordMatchCreated counts a new mutual match.
func RecordMatchCreated(strategy string) {
	globalManager.matchesCreated.WithLabelValues(strategy).Inc()
}

// RecordPromotionSkipped counts a promotion attempt that created nothing.
func RecordPromotionSkipped(reason string) {
	globalManager.promotionSkipped.WithLabelValues(reason).Inc()
}

// RecordDistanceFailure counts a degraded distance lookup.
func RecordDistanceFailure(reason string) {
	globalManager.distanceFailures.WithLabelValues(reason).Inc()
}

// UpdateDistanceBreakerState marks state as the current breaker state.
func UpdateDistanceBreakerState(state string) {
	for _, s := range breakerStates {
		v := 0.0
		if s == state {
			v = 1
		}
		globalManager.distanceBreakerState.WithLabelValues(s).Set(v)
	}
}

// RecordStoreLatency observes a repository operation.
func RecordStoreLatency(store, op string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(store, op).Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint counts an HTTP error response.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// GetRegistry returns the registry the global manager registers on.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
