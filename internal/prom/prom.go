package prom

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts report builds and exposes them for scraping.
type Metrics struct {
	registry        *prometheus.Registry
	uploads         *prometheus.CounterVec
	rowsIngested    prometheus.Counter
	pipelineSeconds prometheus.Histogram
	accounts        prometheus.Gauge
}

func NewMetrics() *Metrics {
	pm := &Metrics{registry: prometheus.NewRegistry()}

	pm.uploads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ga4report_uploads_total",
		Help: "Processed CSV files by source and outcome",
	}, []string{"source", "outcome"})

	pm.rowsIngested = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ga4report_rows_ingested_total",
		Help: "Raw CSV rows loaded",
	})

	pm.pipelineSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ga4report_pipeline_seconds",
		Help:    "Time to load, aggregate, rank and chart one file",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	})

	pm.accounts = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ga4report_accounts",
		Help: "Accounts in the current report",
	})

	pm.registry.MustRegister(
		pm.uploads,
		pm.rowsIngested,
		pm.pipelineSeconds,
		pm.accounts,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return pm
}

// ObserveSuccess records a report built from rows raw rows for n accounts.
func (pm *Metrics) ObserveSuccess(source string, rows, accounts int, took time.Duration) {
	pm.uploads.WithLabelValues(source, "ok").Inc()
	pm.rowsIngested.Add(float64(rows))
	pm.accounts.Set(float64(accounts))
	pm.pipelineSeconds.Observe(took.Seconds())
}

func (pm *Metrics) ObserveFailure(source string) {
	pm.uploads.WithLabelValues(source, "error").Inc()
}

func (pm *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(pm.registry, promhttp.HandlerOpts{})
}
