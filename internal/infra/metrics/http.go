package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(httpRequestDuration, rateLimitedTotal, adminAuthTotal)
}

var (
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP handler latency by route pattern and status code.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route", "method", "code"},
	)

	rateLimitedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limited_requests_total",
			Help: "Requests rejected by a rate limiter.",
		},
		[]string{"route"},
	)

	// result: authorized|unauthorized|forbidden
	adminAuthTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_auth_total",
			Help: "Admin capability checks by result.",
		},
		[]string{"result"},
	)
)

func ObserveHTTPRequest(route, method string, code int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestDuration.WithLabelValues(route, method, strconv.Itoa(code)).Observe(d.Seconds())
}

func IncRateLimited(route string) {
	rateLimitedTotal.WithLabelValues(norm(route)).Inc()
}

func IncAdminAuth(result string) {
	adminAuthTotal.WithLabelValues(norm(result)).Inc()
}
