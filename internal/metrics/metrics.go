// Package metrics — Prometheus-коллекторы comments-service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTP — метрики REST API.
type HTTP struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight prometheus.Gauge
}

// NewHTTP создаёт коллекторы и регистрирует их в reg (nil — prometheus.DefaultRegisterer).
func NewHTTP(reg prometheus.Registerer) *HTTP {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &HTTP{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bragboard",
			Subsystem: "comments",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bragboard",
			Subsystem: "comments",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bragboard",
			Subsystem: "comments",
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being served.",
		}),
	}

	reg.MustRegister(m.requests, m.duration, m.inflight)

	return m
}

// Start отмечает начало запроса.
func (m *HTTP) Start() {
	m.inflight.Inc()
}

// Observe фиксирует завершённый запрос. route — шаблон маршрута chi, а не сырой путь.
func (m *HTTP) Observe(method, route string, status int, dur time.Duration) {
	m.inflight.Dec()

	if route == "" {
		route = "unmatched"
	}

	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(dur.Seconds())
}
