package middleware

import (
	"context"
	"net/http"
	"strings"

	"StorefrontPlatform/pkg/errors"
	"StorefrontPlatform/pkg/logger"
)

// Authorizer проверяет административный запрос по адресу и токену
type Authorizer interface {
	Authorize(ctx context.Context, ip, bearer string) error
}

// AdminMiddleware пропускает только разрешенный адрес с действующим токеном.
// Отказ по адресу дает 403, по токену 401 (Unauthorized или Session expired).
func AdminMiddleware(auth Authorizer, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if err := auth.Authorize(ctx, ClientIP(ctx), BearerToken(r)); err != nil {
				log.Debug("Admin request rejected",
					logger.CtxField(ctx),
					logger.String("path", r.URL.Path),
					logger.String("code", string(errors.CodeOf(err))))
				errors.WriteJSON(w, err, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken извлекает токен из "Authorization: Bearer <token>".
// Другие схемы дают пустую строку.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
