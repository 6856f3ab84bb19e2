package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricPrefix = "solarpayback_"

// metrics are registered per server so that several servers (and tests) can
// live in one process.
type metrics struct {
	registry *prometheus.Registry

	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	extractions   *prometheus.CounterVec
	fieldMisses   *prometheus.CounterVec
	submissions   *prometheus.CounterVec
	ledgerPeriods prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		extractions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "bill_extractions_total",
				Help: "Total uploaded bills by result",
			},
			[]string{"result"},
		),
		fieldMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "bill_field_misses_total",
				Help: "Bill fields that fell back to their default, by field",
			},
			[]string{"field"},
		),
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "period_submissions_total",
				Help: "Total period submissions by result",
			},
			[]string{"result"},
		),
		ledgerPeriods: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "ledger_periods",
				Help: "Number of periods in the ledger at the last read",
			},
		),
	}

	m.registry.MustRegister(
		m.requests,
		m.latency,
		m.extractions,
		m.fieldMisses,
		m.submissions,
		m.ledgerPeriods,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (m *metrics) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		m.requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		m.latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func (m *metrics) observeExtraction(missing []string, err error) {
	if err != nil {
		m.extractions.WithLabelValues(resultError).Inc()
		return
	}
	m.extractions.WithLabelValues(resultSuccess).Inc()
	for _, field := range missing {
		m.fieldMisses.WithLabelValues(field).Inc()
	}
}

const (
	resultSuccess  = "success"
	resultError    = "error"
	resultRejected = "rejected"
)
