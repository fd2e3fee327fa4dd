package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// チェックアウト結果のラベル
const (
	ResultCommitted         = "committed"
	ResultEmptyCart         = "empty_cart"
	ResultInsufficientStock = "insufficient_stock"
	ResultRejected          = "rejected"
	ResultFailed            = "failed"
)

// Metrics はnilでも呼べる（テストや無効時用）
type Metrics struct {
	Checkouts        *prometheus.CounterVec
	CheckoutDuration prometheus.Histogram
	CartOps          *prometheus.CounterVec
	OpenCarts        prometheus.Gauge
	Requests         *prometheus.CounterVec
	LatencyMS        *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_total",
			Help:      "Checkout attempts by result.",
		}, []string{"result"}),
		CheckoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkout_duration_seconds",
			Help:      "Checkout latency including the database transaction.",
			Buckets:   prometheus.DefBuckets,
		}),
		CartOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_ops_total",
			Help:      "Cart mutations by operation.",
		}, []string{"op"}),
		OpenCarts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "carts_open",
			Help:      "Carts currently held in memory.",
		}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
	}

	reg.MustRegister(m.Checkouts, m.CheckoutDuration, m.CartOps, m.OpenCarts, m.Requests, m.LatencyMS)
	return m
}

func (m *Metrics) ObserveCheckout(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.Checkouts.WithLabelValues(result).Inc()
	m.CheckoutDuration.Observe(d.Seconds())
}

func (m *Metrics) CartOp(op string) {
	if m == nil {
		return
	}
	m.CartOps.WithLabelValues(op).Inc()
}

func (m *Metrics) SetOpenCarts(n int) {
	if m == nil {
		return
	}
	m.OpenCarts.Set(float64(n))
}

func (m *Metrics) ObserveRequest(handler string, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(handler, status).Inc()
	m.LatencyMS.WithLabelValues(handler).Observe(float64(d.Milliseconds()))
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
