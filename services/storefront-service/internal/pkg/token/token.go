package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"StorefrontPlatform/pkg/errors"
)

// DefaultTTL срок жизни сессии администратора
const DefaultTTL = 8 * time.Hour

// Manager выпускает и проверяет токены администратора (HS256)
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option настройка Manager
type Option func(*Manager)

// WithClock подменяет источник времени
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager создает новый экземпляр менеджера токенов
func NewManager(secret string, ttl time.Duration, opts ...Option) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TTL возвращает срок жизни токена
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue выпускает токен с iat = сейчас и exp = iat + ttl
func (m *Manager) Issue() (string, error) {
	if len(m.secret) == 0 {
		return "", errors.New(errors.ErrConfiguration, "Missing ADMIN_TOKEN_SECRET")
	}

	issued := m.now().Truncate(time.Second)
	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(issued.Add(m.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to sign token")
	}
	return signed, nil
}

// Verify проверяет подпись и срок действия.
// Неверный формат, алгоритм или подпись дают ErrUnauthorized,
// отсутствующий или истекший exp дает ErrSessionExpired.
func (m *Manager) Verify(tokenString string) error {
	if len(m.secret) == 0 || tokenString == "" {
		return errors.New(errors.ErrUnauthorized, "Unauthorized")
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		// Срок проверяется ниже по собственным часам
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrUnauthorized, "Unauthorized")
	}

	if claims.ExpiresAt == nil || m.now().Unix() > claims.ExpiresAt.Unix() {
		return errors.New(errors.ErrSessionExpired, "Session expired")
	}
	return nil
}
