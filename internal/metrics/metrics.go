package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Vendor database metrics
	VendorQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "timekeep_vendor_query_duration_seconds",
			Help:    "Duration of vendor database queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	VendorQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timekeep_vendor_query_errors_total",
			Help: "Total number of vendor database query errors",
		},
		[]string{"operation"},
	)

	// Circuit breaker metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "timekeep_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timekeep_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timekeep_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Polarity mapping metrics
	MappingCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "timekeep_mapping_cache_hits_total",
			Help: "Total number of mapping state cache hits",
		},
	)

	MappingCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "timekeep_mapping_cache_misses_total",
			Help: "Total number of mapping state cache misses",
		},
	)

	MappingEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timekeep_mapping_evaluations_total",
			Help: "Total number of swap detector evaluations",
		},
		[]string{"variant", "swapped"},
	)

	SchemaResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timekeep_schema_resolutions_total",
			Help: "Total number of schema resolution attempts",
		},
		[]string{"result"}, // ok, error
	)

	// Report metrics
	ReportsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timekeep_reports_generated_total",
			Help: "Total number of reports generated",
		},
		[]string{"kind"},
	)

	ReportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "timekeep_report_duration_seconds",
			Help:    "Duration of report generation in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	ReportNotes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "timekeep_report_anomaly_notes_total",
			Help: "Total number of anomaly notes attached to daily reports",
		},
	)

	ReportRunsPruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "timekeep_report_runs_pruned_total",
			Help: "Total number of report run records deleted by the pruner",
		},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timekeep_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "timekeep_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "timekeep_api_active_requests",
			Help: "Number of in-flight API requests",
		},
	)
)

// RecordVendorQuery records a vendor query metric
func RecordVendorQuery(operation string, duration time.Duration, err error) {
	VendorQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		VendorQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordReport records a generated report.
func RecordReport(kind string, duration time.Duration, notes int) {
	ReportsGenerated.WithLabelValues(kind).Inc()
	ReportDuration.WithLabelValues(kind).Observe(duration.Seconds())
	if notes > 0 {
		ReportNotes.Add(float64(notes))
	}
}

// RecordMappingEvaluation counts a fresh swap detector run.
func RecordMappingEvaluation(variant string, swapped bool) {
	MappingEvaluations.WithLabelValues(variant, strconv.FormatBool(swapped)).Inc()
}

// RecordSchemaResolution counts a schema resolution attempt.
func RecordSchemaResolution(err error) {
	if err != nil {
		SchemaResolutions.WithLabelValues("error").Inc()
		return
	}
	SchemaResolutions.WithLabelValues("ok").Inc()
}
