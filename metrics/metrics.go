package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HttpRequestsTotal counts requests by method, route and status code.
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "e5_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	// HttpRequestDuration covers everything from health checks to large batches.
	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "e5_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	TextsEncodedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "e5_texts_encoded_total",
			Help: "Total number of texts successfully encoded",
		},
	)

	EncodeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "e5_encode_duration_seconds",
			Help:    "Duration of backend encode calls in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
	)

	EncodeErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "e5_encode_errors_total",
			Help: "Total number of failed encode calls",
		},
	)
)
