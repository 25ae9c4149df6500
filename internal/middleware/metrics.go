package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanfie_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fanfie_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpActiveRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fanfie_http_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"method"},
	)

	admissionRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanfie_admission_rejections_total",
			Help: "Requests rejected by the admission pipeline, by reason",
		},
		[]string{"reason"},
	)

	rateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanfie_rate_limit_hits_total",
			Help: "Requests rejected by the rate limiter, by endpoint class",
		},
		[]string{"class"},
	)
)

// RecordAdmissionRejection records an admission pipeline rejection
func RecordAdmissionRejection(reason string) {
	admissionRejections.WithLabelValues(reason).Inc()
}

// RecordRateLimitHit records a window rate-limit rejection
func RecordRateLimitHit(class string) {
	rateLimitHits.WithLabelValues(class).Inc()
}

// Metrics creates a Prometheus metrics middleware
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if isProbePath(c.Path()) {
			return c.Next()
		}

		start := time.Now()
		method := c.Method()

		httpActiveRequests.WithLabelValues(method).Inc()
		defer httpActiveRequests.WithLabelValues(method).Dec()

		err := c.Next()

		// Label with the route pattern, not the raw path, to bound cardinality
		path := c.Route().Path
		status := strconv.Itoa(c.Response().StatusCode())

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())

		return err
	}
}
