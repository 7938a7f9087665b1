package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	symbolsExported *prometheus.CounterVec
	upstreamErrors  *prometheus.CounterVec
	lastClose       *prometheus.GaugeVec
	latency         *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		symbolsExported: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinpager_export_symbols_total",
				Help: "Symbols processed by export jobs, by result",
			},
			[]string{"result"},
		),
		upstreamErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinpager_upstream_errors_total",
				Help: "Total number of upstream API errors",
			},
			[]string{"source"},
		),
		lastClose: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coinpager_last_close_usd",
				Help: "Last daily close recorded for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coinpager_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordSymbolExported records one symbol finished by an export job.
func (r *Recorder) RecordSymbolExported(result string) {
	r.symbolsExported.WithLabelValues(result).Inc()
}

// RecordUpstreamError records an upstream API error.
func (r *Recorder) RecordUpstreamError(source string) {
	r.upstreamErrors.WithLabelValues(source).Inc()
}

// RecordLastClose records the most recent daily close for a symbol.
func (r *Recorder) RecordLastClose(symbol string, close float64) {
	r.lastClose.WithLabelValues(symbol).Set(close)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
