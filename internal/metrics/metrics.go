// Package metrics exposes Prometheus instrumentation for the service.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReceiptsParsed counts receipts successfully parsed and stored.
	ReceiptsParsed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitr_receipts_parsed_total",
		Help: "Number of receipts successfully parsed and stored.",
	})

	// ParseFailures counts upstream parse-service failures.
	ParseFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitr_parse_failures_total",
		Help: "Number of failed calls to the receipt parse service.",
	})

	// SplitsFinalized counts split sessions that passed the finalization
	// gate.
	SplitsFinalized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "splitr_splits_finalized_total",
		Help: "Number of split sessions finalized.",
	})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "splitr_http_request_duration_seconds",
		Help:    "HTTP request latency by method, route, and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Middleware records request latency per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpDuration.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}
