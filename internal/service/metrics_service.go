package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// surface, the allocator, and the statistics cache.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	runDuration     prometheus.Observer
	runTotal        *prometheus.CounterVec
	scheduledTotal  prometheus.Counter
	demotedTotal    prometheus.Counter
	solverRestarts  prometheus.Histogram
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	transitionTotal *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	runDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "allocation_run_duration_seconds",
		Help:    "End-to-end duration of schedule allocation runs",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120},
	})

	runTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "allocation_runs_total",
		Help: "Total allocation runs by solver status",
	}, []string{"status"})

	scheduledTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "interviews_scheduled_total",
		Help: "Total interviews emitted by allocation runs",
	})

	demotedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "applications_demoted_total",
		Help: "Total shortlisted applications demoted to waitlist",
	})

	solverRestarts := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "solver_restarts",
		Help:    "Solver restarts performed per allocation run",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 200},
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "statistics_cache_hits_total",
		Help: "Total statistics cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "statistics_cache_misses_total",
		Help: "Total statistics cache misses",
	})

	transitionTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "interview_transitions_total",
		Help: "Total interview lifecycle transitions",
	}, []string{"to"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, runDuration, runTotal,
		scheduledTotal, demotedTotal, solverRestarts, cacheHits, cacheMisses,
		transitionTotal, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		runDuration:     runDuration,
		runTotal:        runTotal,
		scheduledTotal:  scheduledTotal,
		demotedTotal:    demotedTotal,
		solverRestarts:  solverRestarts,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		transitionTotal: transitionTotal,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records per-endpoint request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveAllocationRun records the outcome of one schedule run.
func (m *MetricsService) ObserveAllocationRun(status SolveStatus, scheduled, demoted, restarts int, duration time.Duration) {
	if m == nil {
		return
	}
	m.runDuration.Observe(duration.Seconds())
	m.runTotal.WithLabelValues(string(status)).Inc()
	m.scheduledTotal.Add(float64(scheduled))
	m.demotedTotal.Add(float64(demoted))
	m.solverRestarts.Observe(float64(restarts))
}

// RecordCacheOperation counts a statistics cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// RecordTransition counts a lifecycle transition by target status.
func (m *MetricsService) RecordTransition(to string) {
	if m == nil {
		return
	}
	m.transitionTotal.WithLabelValues(to).Inc()
}
