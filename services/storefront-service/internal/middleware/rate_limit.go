package middleware

import (
	"net/http"
	"time"

	"StorefrontPlatform/pkg/logger"
	"StorefrontPlatform/pkg/ratelimit"
)

// RateLimitMiddleware ограничивает частоту запросов с одного адреса.
// Сбой лимитера не блокирует запрос.
func RateLimitMiddleware(limiter ratelimit.RateLimiter, scope string, limit int, window time.Duration, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			key := scope + ":" + ClientIP(ctx)

			exceeded, err := limiter.CheckRateLimit(ctx, key, limit, window)
			if err != nil {
				log.Error("Rate limiter error, allowing request", logger.CtxField(ctx), logger.String("key", key), logger.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			if exceeded {
				log.Warn("Rate limit exceeded",
					logger.CtxField(ctx),
					logger.String("key", key),
					logger.Int("limit", limit),
					logger.Duration("window", window))
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"ok":false,"error":"Too many requests"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
