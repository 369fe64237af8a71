package httpmetrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/yaddak/yaddak/internal/observability/metrics"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Wrap records request count, in-flight gauge and latency by normalized path.
func Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		method := r.Method
		path := NormalizePath(r.URL.Path)

		metrics.RequestsTotal.WithLabelValues(method, path).Inc()
		metrics.RequestsInFlight.Inc()
		defer metrics.RequestsInFlight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		metrics.RequestDurationSeconds.
			WithLabelValues(method, path, strconv.Itoa(rec.status/100)+"xx").
			Observe(time.Since(start).Seconds())
	})
}
