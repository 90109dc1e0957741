// Package metrics collects Prometheus metrics for the marketplace API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const unmatchedRoute = "unmatched"

// Collector records HTTP and domain metrics.
type Collector struct {
	requests         *prometheus.CounterVec
	requestLatency   *prometheus.HistogramVec
	usersProvisioned prometheus.Counter
	productsCreated  prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ecofinds_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status_code"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ecofinds_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		usersProvisioned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ecofinds_users_provisioned_total",
			Help: "Local users created on first token verification.",
		}),
		productsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ecofinds_products_created_total",
			Help: "Products created.",
		}),
	}

	reg.MustRegister(
		c.requests,
		c.requestLatency,
		c.usersProvisioned,
		c.productsCreated,
	)

	return c
}

// RecordUserProvisioned counts a newly created user.
func (c *Collector) RecordUserProvisioned() {
	c.usersProvisioned.Inc()
}

// RecordProductCreated counts a newly created product.
// Category is client-supplied text, so it is never used as a label.
func (c *Collector) RecordProductCreated() {
	c.productsCreated.Inc()
}

// RecordRequest counts a completed HTTP request.
func (c *Collector) RecordRequest(method, route string, statusCode int, duration time.Duration) {
	if route == "" {
		route = unmatchedRoute
	}
	c.requests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.requestLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Middleware records every request handled by the gin engine.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		started := time.Now()
		ctx.Next()
		c.RecordRequest(ctx.Request.Method, ctx.FullPath(), ctx.Writer.Status(), time.Since(started))
	}
}

// Handler returns the scrape endpoint for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
