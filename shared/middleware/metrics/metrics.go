// Package metrics exports HTTP metrics for the BFF, grouped by product surface.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const unmatched = "unmatched"

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prolearn_http_requests_total",
			Help: "HTTP requests by surface, route and status class",
		},
		[]string{"surface", "method", "route", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "prolearn_http_request_duration_seconds",
			Help: "HTTP request latency by surface and route",
			// submits wait on the backend with up to 90 MB of media
			Buckets: []float64{.005, .025, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"surface", "method", "route"},
	)

	uploadBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "prolearn_http_upload_bytes",
			Help:    "Declared size of multipart request bodies",
			Buckets: prometheus.ExponentialBuckets(64<<10, 4, 8),
		},
		[]string{"route"},
	)

	inFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "prolearn_http_requests_in_flight",
			Help: "HTTP requests being served, by surface",
		},
		[]string{"surface"},
	)
)

// Surface names the part of the product a route pattern belongs to.
func Surface(route string) string {
	switch {
	case route == unmatched:
		return unmatched
	case strings.HasPrefix(route, "/api/editors"), strings.HasSuffix(route, "/editor"):
		return "editor"
	case strings.HasPrefix(route, "/api/posts"):
		return "feed"
	case strings.HasPrefix(route, "/previews"):
		return "preview"
	case route == "/metrics":
		return "metrics"
	default:
		return "account"
	}
}

// statusClass folds statuses into 2xx..5xx to bound cardinality.
func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records every request under its chi route pattern. The route is only
// known after routing, so the in-flight gauge is keyed by the raw path prefix.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		early := Surface(r.URL.Path)
		inFlight.WithLabelValues(early).Inc()
		defer inFlight.WithLabelValues(early).Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := unmatched
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		surface := Surface(route)

		requestsTotal.WithLabelValues(surface, r.Method, route, statusClass(rec.status)).Inc()
		requestDuration.WithLabelValues(surface, r.Method, route).Observe(time.Since(start).Seconds())
		if r.ContentLength > 0 && strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			uploadBytes.WithLabelValues(route).Observe(float64(r.ContentLength))
		}
	})
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
