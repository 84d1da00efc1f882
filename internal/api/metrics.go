package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erazemk/zbirka/internal/archive"
	"github.com/erazemk/zbirka/internal/model"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zbirka",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status code.",
	}, []string{"method", "route", "code"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "zbirka",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
	}, []string{"method", "route"})

	itemsByStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "zbirka",
		Name:      "items",
		Help:      "Items by completion status.",
	}, []string{"status"})

	seriesCount = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "zbirka",
		Name:      "series",
		Help:      "Number of series in the archive.",
	})
)

// observeRequest records one finished request.
func observeRequest(r *http.Request, status int, elapsed time.Duration) {
	route := r.Pattern
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())
}

// MetricsHandler refreshes the archive gauges and serves the registry.
func MetricsHandler(a *archive.Archive) http.Handler {
	next := promhttp.Handler()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for status, n := range a.StatusCounts() {
			itemsByStatus.WithLabelValues(statusLabel(status)).Set(float64(n))
		}
		seriesCount.Set(float64(len(a.Snapshot().Series)))
		next.ServeHTTP(w, r)
	})
}

func statusLabel(s model.Status) string {
	text, _ := s.MarshalText()
	return string(text)
}
