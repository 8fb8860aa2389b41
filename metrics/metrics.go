// Package metrics holds the Prometheus collectors of the service. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	OrdersPlaced    *prometheus.CounterVec
	OrderAmount     prometheus.Counter
	StockDeductions *prometheus.CounterVec
	CASConflicts    prometheus.Counter
	AlertsSent      *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		OrdersPlaced: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dserve_orders_placed_total",
			Help: "Orders saved, by order type.",
		}, []string{"order_type"}),
		OrderAmount: f.NewCounter(prometheus.CounterOpts{
			Name: "dserve_order_amount_total",
			Help: "Sum of order totals.",
		}),
		StockDeductions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dserve_stock_deductions_total",
			Help: "Stock consumption attempts, by outcome.",
		}, []string{"outcome"}),
		CASConflicts: f.NewCounter(prometheus.CounterOpts{
			Name: "dserve_stock_cas_conflicts_total",
			Help: "Stock writes that lost a version check and were retried.",
		}),
		AlertsSent: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dserve_alerts_sent_total",
			Help: "Inventory alerts delivered, by kind.",
		}, []string{"kind"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dserve_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) ObserveOrder(orderType string, amount float64) {
	if m == nil {
		return
	}
	m.OrdersPlaced.WithLabelValues(orderType).Inc()
	m.OrderAmount.Add(amount)
}

func (m *Metrics) ObserveDeduction(outcome string) {
	if m == nil {
		return
	}
	m.StockDeductions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveCASConflict() {
	if m == nil {
		return
	}
	m.CASConflicts.Inc()
}

func (m *Metrics) ObserveAlert(kind string) {
	if m == nil {
		return
	}
	m.AlertsSent.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
