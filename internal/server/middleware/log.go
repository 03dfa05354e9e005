package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// LogMiddleware writes one structured entry per request. The level follows the
// status class: Error for 5xx, Warn for 4xx, Info otherwise.
func LogMiddleware(logger *zap.SugaredLogger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)

			fields := []any{
				"method", r.Method,
				"uri", r.RequestURI,
				"route", routePattern(r),
				"status", rw.status,
				"size", rw.size,
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
			}
			switch {
			case rw.status >= http.StatusInternalServerError:
				logger.Errorw("request failed", fields...)
			case rw.status >= http.StatusBadRequest:
				logger.Warnw("request rejected", fields...)
			default:
				logger.Infow("request served", fields...)
			}
		})
	}
}

// routePattern is the matched chi pattern, or empty outside a chi router.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}
