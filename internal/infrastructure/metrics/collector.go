package metrics

import (
	"sync"
	"sync/atomic"

	"github.com/jamboree26/notifications/pkg/cache"
	"github.com/jamboree26/notifications/pkg/cache/memorycache"
)

// Collector collects and aggregates metrics for the application.
type Collector struct {
	// Per-route request metrics
	requests sync.Map // map[string]*uint64 - route -> count
	errors   sync.Map // map[string]*uint64 - route -> error count
	duration sync.Map // map[string]*durationValue - route -> total duration in seconds

	// Delivery metrics
	pushSuccess uint64
	pushFailure uint64

	// Cache reference (optional, for querying cache-specific metrics)
	cache cache.Cache
}

// durationValue holds duration with mutex for thread-safe updates.
type durationValue struct {
	mu           sync.Mutex
	totalSeconds float64
}

// CacheMetrics holds cache performance metrics.
type CacheMetrics struct {
	Hits        uint64
	Misses      uint64
	HitRate     float64
	KeysCurrent int64
	MemoryBytes int64
	Evictions   uint64
}

// RequestMetrics holds per-route request metrics.
type RequestMetrics struct {
	RequestCounts        map[string]uint64
	ErrorCounts          map[string]uint64
	TotalDurationSeconds map[string]float64
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{}
}

// SetCache sets the cache instance for collecting cache metrics.
func (c *Collector) SetCache(cache cache.Cache) {
	c.cache = cache
}

// RecordRequest records a handled request.
func (c *Collector) RecordRequest(route string) {
	counter := c.getOrCreateCounter(&c.requests, route)
	atomic.AddUint64(counter, 1)
}

// RecordError records a request that ended in a server error.
func (c *Collector) RecordError(route string) {
	counter := c.getOrCreateCounter(&c.errors, route)
	atomic.AddUint64(counter, 1)
}

// RecordDuration records the duration of a request in seconds.
func (c *Collector) RecordDuration(route string, durationSeconds float64) {
	val, _ := c.duration.LoadOrStore(route, &durationValue{})
	dv := val.(*durationValue)

	dv.mu.Lock()
	dv.totalSeconds += durationSeconds
	dv.mu.Unlock()
}

// RecordDelivery records the outcome counts of a push delivery.
func (c *Collector) RecordDelivery(success, failure int) {
	atomic.AddUint64(&c.pushSuccess, uint64(success))
	atomic.AddUint64(&c.pushFailure, uint64(failure))
}

// DeliveryCounts returns the accumulated push delivery outcomes.
func (c *Collector) DeliveryCounts() (success, failure uint64) {
	return atomic.LoadUint64(&c.pushSuccess), atomic.LoadUint64(&c.pushFailure)
}

// GetCacheMetrics returns current cache metrics.
func (c *Collector) GetCacheMetrics() *CacheMetrics {
	if c.cache == nil {
		return &CacheMetrics{}
	}

	metrics := c.cache.Metrics()
	if metrics == nil {
		return &CacheMetrics{}
	}

	result := &CacheMetrics{
		Hits:      metrics.Hits,
		Misses:    metrics.Misses,
		HitRate:   metrics.HitRate(),
		Evictions: metrics.KeysEvicted,
	}

	// Get current keys and memory if available
	if memCache, ok := c.cache.(*memorycache.Cache); ok {
		result.KeysCurrent = int64(memCache.Len())
		result.MemoryBytes = memCache.Size()
	}

	return result
}

// GetRequestMetrics returns current request metrics.
func (c *Collector) GetRequestMetrics() *RequestMetrics {
	result := &RequestMetrics{
		RequestCounts:        make(map[string]uint64),
		ErrorCounts:          make(map[string]uint64),
		TotalDurationSeconds: make(map[string]float64),
	}

	c.requests.Range(func(key, value interface{}) bool {
		route := key.(string)
		count := atomic.LoadUint64(value.(*uint64))
		result.RequestCounts[route] = count
		return true
	})

	c.errors.Range(func(key, value interface{}) bool {
		route := key.(string)
		count := atomic.LoadUint64(value.(*uint64))
		result.ErrorCounts[route] = count
		return true
	})

	c.duration.Range(func(key, value interface{}) bool {
		route := key.(string)
		dv := value.(*durationValue)
		dv.mu.Lock()
		result.TotalDurationSeconds[route] = dv.totalSeconds
		dv.mu.Unlock()
		return true
	})

	return result
}

// getOrCreateCounter gets or creates a counter for the given key.
func (c *Collector) getOrCreateCounter(m *sync.Map, key string) *uint64 {
	val, _ := m.LoadOrStore(key, new(uint64))
	return val.(*uint64)
}
