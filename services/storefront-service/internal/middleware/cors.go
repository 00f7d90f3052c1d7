package middleware

import (
	"net/http"

	"StorefrontPlatform/pkg/logger"
)

// CORSMiddleware выставляет CORS заголовки и отключает кэширование ответов.
// Preflight запросы завершаются здесь же с {"ok":true}.
func CORSMiddleware(allowedOrigins []string, log logger.Logger) func(http.Handler) http.Handler {
	wildcard := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			wildcard = true
		}
		allowed[origin] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			switch {
			case wildcard:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin != "" && allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			case origin != "":
				log.Debug("CORS origin not allowed", logger.String("origin", origin))
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "content-type,authorization")
			w.Header().Set("Cache-Control", "no-store, max-age=0")

			if r.Method == http.MethodOptions {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(`{"ok":true}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
