package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "aegis"
)

var (
	apiDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}

	// Config API Metrics
	ConfigAPIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "configapi_requests_total",
		Help:      "Count of Config API requests by endpoint and response status.",
	}, []string{"endpoint", "status"})

	ConfigAPIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "configapi_request_duration_seconds",
		Help:      "Time taken for a Config API request, including retries.",
		Buckets:   apiDurationBuckets,
	}, []string{"endpoint"})

	// Dashboard Metrics
	ScanDetailsCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scan_details_cache_total",
		Help:      "Scan detail cache lookups by result.",
	}, []string{"result"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Dashboard HTTP requests by method and response status.",
	}, []string{"method", "status"})

	ExportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "exports_total",
		Help:      "Number of SBOM exports served by format.",
	}, []string{"format"})
)
