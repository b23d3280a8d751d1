package prometheus

import (
	"strconv"
	"time"

	"github.com/turtacn/KeyIP-Substructure/internal/domain/substructure"
)

// AppMetrics holds all application metrics.
type AppMetrics struct {
	// HTTP Layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// gRPC Layer
	GRPCRequestsTotal   CounterVec
	GRPCRequestDuration HistogramVec

	// Matching engine
	MatchRequestsTotal CounterVec
	MatchDuration      HistogramVec
	MatchSearchStates  CounterVec

	// Library screening
	ScreenJobsTotal    CounterVec
	ScreenDuration     HistogramVec
	ScreenTargetsTotal CounterVec
	ScreenCacheTotal   CounterVec
	ScreenActiveJobs   GaugeVec

	ErrorsTotal CounterVec
}

// Default Buckets
var (
	DefaultHTTPDurationBuckets   = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultMatchDurationBuckets  = []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1, .5, 1}
	DefaultScreenDurationBuckets = []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 300}
)

// NewAppMetrics registers all metrics and returns AppMetrics struct.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method")

	// gRPC
	m.GRPCRequestsTotal = collector.RegisterCounter("grpc_unary_requests_total", "Total unary gRPC requests", "service", "method", "code")
	m.GRPCRequestDuration = collector.RegisterHistogram("grpc_unary_request_duration_seconds", "Unary gRPC request duration", DefaultHTTPDurationBuckets, "service", "method")

	// Matching
	m.MatchRequestsTotal = collector.RegisterCounter("match_requests_total", "Finished match calls", "algorithm", "result")
	m.MatchDuration = collector.RegisterHistogram("match_duration_seconds", "Match call duration", DefaultMatchDurationBuckets, "algorithm")
	m.MatchSearchStates = collector.RegisterCounter("match_search_states_total", "Search states visited by match calls", "algorithm", "kind")

	// Screening
	m.ScreenJobsTotal = collector.RegisterCounter("screen_jobs_total", "Library screening jobs", "status")
	m.ScreenDuration = collector.RegisterHistogram("screen_duration_seconds", "Library screening duration", DefaultScreenDurationBuckets, "algorithm")
	m.ScreenTargetsTotal = collector.RegisterCounter("screen_targets_total", "Library molecules screened", "result")
	m.ScreenCacheTotal = collector.RegisterCounter("screen_cache_total", "Screening cache lookups", "outcome")
	m.ScreenActiveJobs = collector.RegisterGauge("screen_active_jobs", "Screening jobs in progress", "algorithm")

	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "code")

	return m
}

// RecordMatch implements substructure.Recorder.
func (m *AppMetrics) RecordMatch(algorithm string, outcome substructure.Outcome, elapsed time.Duration, stats substructure.Stats) {
	m.MatchRequestsTotal.WithLabelValues(algorithm, string(outcome)).Inc()
	m.MatchDuration.WithLabelValues(algorithm).Observe(elapsed.Seconds())
	if stats.States > 0 {
		m.MatchSearchStates.WithLabelValues(algorithm, "evaluated").Add(float64(stats.States))
	}
	if stats.Pruned > 0 {
		m.MatchSearchStates.WithLabelValues(algorithm, "pruned").Add(float64(stats.Pruned))
	}
}

// Helpers

func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordGRPCRequest counts one finished unary call.  code is the gRPC status
// code name.
func (m *AppMetrics) RecordGRPCRequest(service, method, code string, duration time.Duration) {
	m.GRPCRequestsTotal.WithLabelValues(service, method, code).Inc()
	m.GRPCRequestDuration.WithLabelValues(service, method).Observe(duration.Seconds())
}

// RecordScreen records one finished screening job.  failed marks jobs that
// stopped on an error or cancellation.
func (m *AppMetrics) RecordScreen(algorithm string, screened, hits int, duration time.Duration, failed bool) {
	status := "success"
	if failed {
		status = "failure"
	}
	m.ScreenJobsTotal.WithLabelValues(status).Inc()
	m.ScreenDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
	m.ScreenTargetsTotal.WithLabelValues("hit").Add(float64(hits))
	m.ScreenTargetsTotal.WithLabelValues("miss").Add(float64(screened - hits))
}

// RecordCacheAccess counts screening cache lookups.  outcome is "hit", "miss"
// or "error".
func (m *AppMetrics) RecordCacheAccess(outcome string, n int) {
	if n > 0 {
		m.ScreenCacheTotal.WithLabelValues(outcome).Add(float64(n))
	}
}

// TrackScreen marks a screening job as running until the returned func is
// called.
func (m *AppMetrics) TrackScreen(algorithm string) func() {
	g := m.ScreenActiveJobs.WithLabelValues(algorithm)
	g.Inc()
	return g.Dec
}

func RecordError(metrics *AppMetrics, component, code string) {
	metrics.ErrorsTotal.WithLabelValues(component, code).Inc()
}

var _ substructure.Recorder = (*AppMetrics)(nil)
