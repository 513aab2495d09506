package gateway

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filmsphere_gateway_requests_total",
		Help: "Gateway requests by endpoint and response status.",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "filmsphere_gateway_request_duration_seconds",
		Help:    "Gateway request latency by endpoint.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
)

func observeRequest(path, status string, elapsed time.Duration) {
	endpoint := metricEndpoint(path)
	requestsTotal.WithLabelValues(endpoint, status).Inc()
	requestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// metricEndpoint strips trailing id segments to keep label cardinality low.
func metricEndpoint(path string) string {
	end := len(path)
	for end > 0 && path[end-1] >= '0' && path[end-1] <= '9' {
		end--
	}
	if end > 1 && end < len(path) && path[end-1] == '/' {
		return path[:end-1]
	}
	return path
}
