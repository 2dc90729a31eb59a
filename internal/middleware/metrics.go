package middleware

import (
	"net/http"
	"time"

	"github.com/sakif/social-connections/internal/metrics"
)

// Metrics records request count and latency per method, route template and
// status. A nil collector makes it a pass-through.
func Metrics(collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if collector == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			collector.ObserveHTTP(r.Method, routePattern(r), rec.status, time.Since(start))
		})
	}
}
