package middleware

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bryanwahyu/fraudshield/internal/metrics"
)

// MetricsMiddleware tracks request metrics
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.RequestsInFlight.Inc()
		defer metrics.RequestsInFlight.Dec()

		wrapped := wrap(w)
		next.ServeHTTP(wrapped, r)

		metrics.RequestsTotal.WithLabelValues(r.Method, statusClass(wrapped.statusCode)).Inc()
	})
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}

// MetricsHandler exposes the default prometheus registry.
func MetricsHandler() http.Handler {
	metrics.Register()
	return promhttp.Handler()
}
