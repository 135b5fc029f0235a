package monitoring

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var activeHTTPRequests atomic.Int64
var totalHTTPRequests atomic.Uint64

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genzfits_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "genzfits_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "genzfits_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)
)

// RequestMetricsMiddleware tracks request counters and latency per route.
func RequestMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		startedAt := time.Now()
		activeHTTPRequests.Add(1)
		totalHTTPRequests.Add(1)
		httpRequestsInFlight.Inc()
		defer func() {
			activeHTTPRequests.Add(-1)
			httpRequestsInFlight.Dec()
		}()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(startedAt).Seconds())
	}
}

// RegisterSessionGauge exposes the live session count. Call it once per process.
func RegisterSessionGauge(count func() int) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "genzfits_sessions_active",
			Help: "Number of stored user sessions",
		},
		func() float64 { return float64(count()) },
	))
}

func getHTTPStats() (active int64, total uint64) {
	return activeHTTPRequests.Load(), totalHTTPRequests.Load()
}
