package middleware

import (
	"net/http"
	"time"

	"github.com/Yzairi/CDA/internal/platform/logger"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RequestLogger logs one line per request once the response is written.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	log = log.Named("HTTP")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				fields := []zap.Field{
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", chimw.GetReqID(r.Context())),
					zap.String("trace_id", TraceID(r)),
					zap.String("remote_addr", r.RemoteAddr),
				}
				switch {
				case ww.Status() >= http.StatusInternalServerError:
					log.Error("HTTP request served", fields...)
				case ww.Status() >= http.StatusBadRequest:
					log.Warn("HTTP request served", fields...)
				default:
					log.Info("HTTP request served", fields...)
				}
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
