package metrics

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// statusRecorder captures the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Middleware returns an HTTP middleware that records metrics for each
// request. Requests are labeled by the matched route pattern so path
// parameters do not explode the label space.
func Middleware(collector *Collector, exporter *PrometheusExporter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			route := r.Method + " " + routePattern(r)

			collector.RecordRequest(route)
			if exporter != nil {
				exporter.RecordRequest(route)
			}

			duration := time.Since(start).Seconds()
			collector.RecordDuration(route, duration)
			if exporter != nil {
				exporter.RecordDuration(route, duration)
			}

			if rec.status >= http.StatusInternalServerError {
				collector.RecordError(route)
				if exporter != nil {
					exporter.RecordError(route)
				}
			}
		})
	}
}

// routePattern returns the chi route pattern that matched the request,
// falling back to the raw path when chi has no context.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
