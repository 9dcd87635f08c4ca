// Package metrics exposes Prometheus metrics for uncomment.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uncomment_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// RequestDuration tracks request latency.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "uncomment_request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// StripsTotal counts processed snippets by language and outcome.
	StripsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uncomment_strips_total",
			Help: "Total number of snippets processed",
		},
		[]string{"language", "outcome"},
	)

	// StripDuration tracks time spent in the stripping engine.
	StripDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "uncomment_strip_duration_seconds",
			Help:    "Comment stripping duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"language"},
	)

	// InputBytes tracks submitted snippet sizes.
	InputBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "uncomment_input_bytes",
			Help:    "Size of submitted snippets in bytes",
			Buckets: prometheus.ExponentialBuckets(64, 4, 8),
		},
	)

	// CacheLookups counts result cache hits and misses.
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uncomment_cache_lookups_total",
			Help: "Total number of result cache lookups",
		},
		[]string{"result"},
	)

	// RateLimited counts requests rejected by the rate limiter.
	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "uncomment_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	// ToolCalls tracks MCP tool invocations.
	ToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uncomment_tool_calls_total",
			Help: "Total number of MCP tool calls",
		},
		[]string{"tool", "status"},
	)
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware creates an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		path := normalizePath(r.URL.Path)
		RequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		RequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath normalizes URL paths to avoid high cardinality
func normalizePath(path string) string {
	switch path {
	case "/", "/health", "/metrics", "/api/strip", "/api/languages":
		return path
	default:
		return "other"
	}
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordStrip records one processed snippet.
func RecordStrip(language, outcome string, inputBytes int, d time.Duration) {
	StripsTotal.WithLabelValues(language, outcome).Inc()
	InputBytes.Observe(float64(inputBytes))
	if outcome == "ok" {
		StripDuration.WithLabelValues(language).Observe(d.Seconds())
	}
}

// RecordCacheLookup records a result cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	CacheLookups.WithLabelValues("miss").Inc()
}

// RecordRateLimited records a rejected request.
func RecordRateLimited() {
	RateLimited.Inc()
}

// RecordToolCall records an MCP tool invocation.
func RecordToolCall(tool, status string) {
	ToolCalls.WithLabelValues(tool, status).Inc()
}
