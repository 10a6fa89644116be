// Package metrics defines the Prometheus collectors of the chart service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for payoffchart.
type Metrics struct {
	ParseTotal     *prometheus.CounterVec   // result: ok, error
	ChartsRendered *prometheus.CounterVec   // variant
	HTTPDuration   *prometheus.HistogramVec // route, method
	InboxProcessed *prometheus.CounterVec   // result: charted, rejected

	factory promauto.Factory
}

// New registers the collectors with reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not collide.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ParseTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "payoffchart_parse_total",
			Help: "Term sheets parsed, by result.",
		}, []string{"result"}),
		ChartsRendered: f.NewCounterVec(prometheus.CounterOpts{
			Name: "payoffchart_charts_rendered_total",
			Help: "Payoff geometries built, by structure variant.",
		}, []string{"variant"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "payoffchart_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		InboxProcessed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "payoffchart_inbox_files_total",
			Help: "Inbox files handled by the watcher, by result.",
		}, []string{"result"}),
		factory: f,
	}
}

// WatchSessions exports the live session count, read at scrape time.
func (m *Metrics) WatchSessions(count func() int) prometheus.GaugeFunc {
	return m.factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "payoffchart_sessions_active",
		Help: "Live editing sessions.",
	}, func() float64 { return float64(count()) })
}

// ObserveParse counts one parse attempt.
func (m *Metrics) ObserveParse(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ParseTotal.WithLabelValues(result).Inc()
}

// ObserveChart counts one rendered geometry.
func (m *Metrics) ObserveChart(variant string) {
	if m == nil {
		return
	}
	m.ChartsRendered.WithLabelValues(variant).Inc()
}
