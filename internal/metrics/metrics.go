package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"storefront/internal/domain"
)

// Metrics holds the storefront collectors. It implements the recorder
// interfaces of the cart and checkout services.
type Metrics struct {
	Requests     *prometheus.CounterVec
	LatencyMS    *prometheus.HistogramVec
	PromoResults *prometheus.CounterVec
	Steps        *prometheus.CounterVec
	Orders       prometheus.Counter
	OrderCents   prometheus.Histogram

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. A nil reg uses a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"route", "method", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storefront",
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"route"}),
		PromoResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "promo_attempts_total",
			Help:      "Promo code attempts by result.",
		}, []string{"result"}),
		Steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "checkout_steps_total",
			Help:      "Checkout steps entered.",
		}, []string{"step"}),
		Orders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "orders_submitted_total",
			Help:      "Orders that reached confirmation.",
		}),
		OrderCents: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storefront",
			Name:      "order_total_cents",
			Help:      "Order totals in cents.",
			Buckets:   prometheus.ExponentialBuckets(1000, 2, 10),
		}),
		gatherer: reg,
	}
	reg.MustRegister(m.Requests, m.LatencyMS, m.PromoResults, m.Steps, m.Orders, m.OrderCents)
	return m
}

func (m *Metrics) PromoAttempt(result domain.PromoResult) {
	m.PromoResults.WithLabelValues(string(result)).Inc()
}

func (m *Metrics) CheckoutStep(step domain.CheckoutStep) {
	m.Steps.WithLabelValues(string(step)).Inc()
}

func (m *Metrics) OrderSubmitted(totalCents int64) {
	m.Orders.Inc()
	m.OrderCents.Observe(float64(totalCents))
}

// Middleware counts requests and latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
