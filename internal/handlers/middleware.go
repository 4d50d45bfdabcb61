package handlers

import (
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		slog.Info("[Server] Request handled",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("elapsed", time.Since(start)))
	})
}

// withHealthGate short-circuits a handler while any of the given dependencies is reported
// unhealthy. Nil flags are ignored.
func withHealthGate(next http.HandlerFunc, health ...*atomic.Bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, h := range health {
			if h != nil && !h.Load() {
				writeError(w, http.StatusServiceUnavailable, "upstream-failure",
					"The emotion analysis service is unavailable right now. Please try again shortly.")
				return
			}
		}
		next(w, r)
	}
}
