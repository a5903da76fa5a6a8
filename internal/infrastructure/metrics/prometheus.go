package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusExporter exports metrics to Prometheus format.
type PrometheusExporter struct {
	collector *Collector

	// Prometheus metrics
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	cacheHitRate     prometheus.Gauge
	cacheKeys        prometheus.Gauge
	cacheMemoryBytes prometheus.Gauge
	cacheEvictions   prometheus.Counter
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	httpErrors       *prometheus.CounterVec
	pushDeliveries   *prometheus.CounterVec
}

// NewPrometheusExporter creates a new Prometheus exporter.
func NewPrometheusExporter(collector *Collector) *PrometheusExporter {
	return &PrometheusExporter{
		collector: collector,
		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "notifications_recipient_cache_hits_total",
			Help: "Total number of cache hits for recipient token lookups",
		}),
		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "notifications_recipient_cache_misses_total",
			Help: "Total number of cache misses for recipient token lookups",
		}),
		cacheHitRate: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "notifications_recipient_cache_hit_rate",
			Help: "Current cache hit rate (0.0 to 1.0)",
		}),
		cacheKeys: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "notifications_recipient_cache_keys_current",
			Help: "Current number of keys in the recipient cache",
		}),
		cacheMemoryBytes: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "notifications_recipient_cache_memory_bytes",
			Help: "Current memory usage of the recipient cache in bytes",
		}),
		cacheEvictions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "notifications_recipient_cache_evictions_total",
			Help: "Total number of cache evictions due to memory limits",
		}),
		httpRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifications_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route"},
		),
		httpDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "notifications_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0},
			},
			[]string{"route"},
		),
		httpErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifications_http_errors_total",
				Help: "Total number of HTTP server errors",
			},
			[]string{"route"},
		),
		pushDeliveries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifications_push_deliveries_total",
				Help: "Total number of push deliveries by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// Update updates Gauge metrics from the collector.
// Counters are updated via middleware, so only update gauges here.
// This should be called periodically (e.g., every 10 seconds).
func (e *PrometheusExporter) Update() {
	cacheMetrics := e.collector.GetCacheMetrics()
	e.cacheHitRate.Set(cacheMetrics.HitRate)
	e.cacheKeys.Set(float64(cacheMetrics.KeysCurrent))
	e.cacheMemoryBytes.Set(float64(cacheMetrics.MemoryBytes))
}

// RecordRequest records a request in Prometheus.
func (e *PrometheusExporter) RecordRequest(route string) {
	e.httpRequests.WithLabelValues(route).Inc()
}

// RecordDuration records a duration in Prometheus.
func (e *PrometheusExporter) RecordDuration(route string, durationSeconds float64) {
	e.httpDuration.WithLabelValues(route).Observe(durationSeconds)
}

// RecordError records a server error in Prometheus.
func (e *PrometheusExporter) RecordError(route string) {
	e.httpErrors.WithLabelValues(route).Inc()
}

// RecordDelivery records push delivery outcomes.
func (e *PrometheusExporter) RecordDelivery(success, failure int) {
	e.pushDeliveries.WithLabelValues("success").Add(float64(success))
	e.pushDeliveries.WithLabelValues("failure").Add(float64(failure))
}

// RecordCacheHit records a cache hit.
func (e *PrometheusExporter) RecordCacheHit() {
	e.cacheHits.Inc()
}

// RecordCacheMiss records a cache miss.
func (e *PrometheusExporter) RecordCacheMiss() {
	e.cacheMisses.Inc()
}

// RecordCacheEviction records a cache eviction.
func (e *PrometheusExporter) RecordCacheEviction() {
	e.cacheEvictions.Inc()
}
