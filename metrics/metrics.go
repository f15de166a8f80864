// Package metrics registers the Prometheus collectors of the vetref service:
//   - vetref_http_requests_total / vetref_http_request_duration_seconds / vetref_http_requests_in_flight
//   - vetref_searches_total by outcome (results, empty, rejected)
//   - vetref_renders_total by source and fallback tier
//   - vetref_monograph_fetches_total by result
//   - vetref_dataset_records by source, set after every load
//   - vetref_reports_total by result
//
// All collectors are registered with the default registry in init.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vetref_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vetref_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vetref_http_requests_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vetref_rate_limiter_buckets",
			Help: "Number of rate limiter buckets (clients not yet refilled at the last cleanup)",
		},
	)

	SearchTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vetref_searches_total",
			Help: "Searches by outcome",
		},
		[]string{"outcome"},
	)

	RenderTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vetref_renders_total",
			Help: "Monograph renders by source and fallback tier",
		},
		[]string{"source", "tier"},
	)

	MonographFetchTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vetref_monograph_fetches_total",
			Help: "Monograph corpus fetches by result",
		},
		[]string{"result"},
	)

	DatasetRecords = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vetref_dataset_records",
			Help: "Records in the loaded datasets",
		},
		[]string{"source"},
	)

	ReportTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vetref_reports_total",
			Help: "Outbound issue reports by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestTotals,
		HTTPRequestDuration,
		HTTPRequestInFlight,
		RateLimiterBucketsTotal,
		SearchTotals,
		RenderTotals,
		MonographFetchTotals,
		DatasetRecords,
		ReportTotals,
	)
}
