package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"StorefrontPlatform/pkg/logger"
)

// TraceHeader заголовок, в котором клиент получает trace_id запроса
const TraceHeader = "X-Trace-Id"

// LoggingMiddleware присваивает запросу trace_id и логирует результат
func LoggingMiddleware(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := uuid.NewString()
			ctx := logger.WithTraceID(r.Context(), traceID)

			w.Header().Set(TraceHeader, traceID)
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(wrapped, r.WithContext(ctx))

			route := r.URL.Path
			if rctx := chi.RouteContext(ctx); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}

			fields := []logger.Field{
				logger.String("trace_id", traceID),
				logger.String("method", r.Method),
				logger.String("route", route),
				logger.String("ip", ClientIP(ctx)),
				logger.Int("status_code", wrapped.statusCode),
				logger.Duration("duration", time.Since(start)),
			}
			if wrapped.statusCode >= http.StatusInternalServerError {
				log.Warn("Request failed", fields...)
				return
			}
			log.Info("Completed request", fields...)
		})
	}
}

// responseWriter обертка для перехвата статуса ответа
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

// WriteHeader перехватывает установку статуса
func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}
