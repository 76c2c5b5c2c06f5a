// Package middleware holds HTTP middleware shared by all handlers.
package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/farmcare-io/farmcare-engine/pkg/logging"
)

// RequestLogger returns middleware that logs every request with its status,
// size and latency. Farmer contact details can ride in query strings, so the
// raw query is scrubbed before it reaches the log. A nil logger disables
// logging entirely.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if logger == nil {
			return next
		}
		httpLogger := logger.Named("http")

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			target := r.URL.Path
			if q := r.URL.RawQuery; q != "" {
				target += "?" + logging.SanitizeText(q)
			}

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("target", target),
				zap.Int("status", wrapped.statusCode),
				zap.Int("bytes", wrapped.bytes),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_addr", r.RemoteAddr),
			}
			if wrapped.statusCode >= http.StatusInternalServerError {
				httpLogger.Warn("HTTP request", fields...)
				return
			}
			httpLogger.Debug("HTTP request", fields...)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
	bytes      int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}
