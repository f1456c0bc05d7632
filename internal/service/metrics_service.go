package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and the
// schedule generator.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	generationTotal *prometheus.CounterVec
	generationTime  prometheus.Observer
	lessonsPlaced   prometheus.Gauge
	lessonsUnplaced prometheus.Gauge
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

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_cache_hits_total",
		Help: "Total schedule cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_cache_misses_total",
		Help: "Total schedule cache misses",
	})

	generationTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_generations_total",
		Help: "Total schedule generation runs by outcome",
	}, []string{"status"})

	generationTime := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_generation_duration_seconds",
		Help:    "Duration of schedule generation runs",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	lessonsPlaced := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedule_lessons_placed",
		Help: "Lessons placed by the most recent generation run",
	})

	lessonsUnplaced := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedule_lessons_unplaced",
		Help: "Lessons left unplaced by the most recent generation run",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheHits, cacheMisses, generationTotal, generationTime, lessonsPlaced, lessonsUnplaced, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		generationTotal: generationTotal,
		generationTime:  generationTime,
		lessonsPlaced:   lessonsPlaced,
		lessonsUnplaced: lessonsUnplaced,
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

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records schedule cache hit/miss outcomes.
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

// ObserveGeneration records one generation run outcome and its duration.
func (m *MetricsService) ObserveGeneration(status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.generationTotal.WithLabelValues(status).Inc()
	m.generationTime.Observe(duration.Seconds())
}

// RecordPlacementStats publishes the placement outcome of the latest run.
func (m *MetricsService) RecordPlacementStats(placed, unplaced int) {
	if m == nil {
		return
	}
	m.lessonsPlaced.Set(float64(placed))
	m.lessonsUnplaced.Set(float64(unplaced))
}
