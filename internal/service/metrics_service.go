package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsSnapshot is a lightweight view of the collected counters.
type MetricsSnapshot struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	StoreOperations          uint64    `json:"storeOperations"`
	AverageStoreOperationMs  float64   `json:"averageStoreOperationMs"`
	StoreFailures            uint64    `json:"storeFailures"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots.
type MetricsService struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	storeDuration     *prometheus.HistogramVec
	storeFailureTotal *prometheus.CounterVec
	recordsCreated    *prometheus.CounterVec

	requestCount         uint64
	requestDurationTotal uint64
	storeCount           uint64
	storeDurationTotal   uint64
	storeFailureCount    uint64
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

	storeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "record_store_operation_seconds",
		Help:    "Duration of record store operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	storeFailureTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "record_store_failures_total",
		Help: "Record store operations that failed",
	}, []string{"operation"})

	recordsCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "records_created_total",
		Help: "Records written per collection",
	}, []string{"collection"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, storeDuration, storeFailureTotal, recordsCreated, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:          registry,
		handler:           handler,
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		storeDuration:     storeDuration,
		storeFailureTotal: storeFailureTotal,
		recordsCreated:    recordsCreated,
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

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveStoreOperation records the latency of a record store call and counts failures.
func (m *MetricsService) ObserveStoreOperation(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.storeDuration.WithLabelValues(operation).Observe(duration.Seconds())
	atomic.AddUint64(&m.storeCount, 1)
	atomic.AddUint64(&m.storeDurationTotal, uint64(duration.Nanoseconds()))
	if err != nil {
		m.storeFailureTotal.WithLabelValues(operation).Inc()
		atomic.AddUint64(&m.storeFailureCount, 1)
	}
}

// RecordCreated counts a write to a collection.
func (m *MetricsService) RecordCreated(collection string) {
	if m == nil {
		return
	}
	m.recordsCreated.WithLabelValues(collection).Inc()
}

// Snapshot returns aggregated metrics.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	storeCount := atomic.LoadUint64(&m.storeCount)
	storeDuration := atomic.LoadUint64(&m.storeDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	var avgStoreMs float64
	if storeCount > 0 {
		avgStoreMs = float64(storeDuration) / float64(storeCount) / float64(time.Millisecond)
	}

	return MetricsSnapshot{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		StoreOperations:          storeCount,
		AverageStoreOperationMs:  avgStoreMs,
		StoreFailures:            atomic.LoadUint64(&m.storeFailureCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
