package password

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"

	"StorefrontPlatform/pkg/errors"
)

// maxBcryptLen bcrypt учитывает только первые 72 байта пароля
const maxBcryptLen = 72

// Checker сверяет пароль администратора с открытым секретом или bcrypt хешем.
// Если задан хеш, открытый секрет не используется.
type Checker struct {
	plain string
	hash  string
}

// NewChecker создает новый Checker
func NewChecker(plain, hash string) *Checker {
	return &Checker{plain: plain, hash: hash}
}

// Configured сообщает, задан ли хоть какой-то секрет
func (c *Checker) Configured() bool {
	return c.plain != "" || c.hash != ""
}

// Check возвращает nil при совпадении пароля
func (c *Checker) Check(candidate string) error {
	if !c.Configured() {
		return errors.New(errors.ErrUnauthorized, "Admin password not set")
	}
	if candidate == "" {
		return errors.New(errors.ErrValidation, "Password required")
	}

	if c.hash != "" {
		// хвост длиннее 72 байт bcrypt не сравнивает, такой кандидат не может совпасть
		if len(candidate) > maxBcryptLen {
			return errors.New(errors.ErrUnauthorized, "Invalid password")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(c.hash), []byte(candidate)); err != nil {
			return errors.New(errors.ErrUnauthorized, "Invalid password")
		}
		return nil
	}

	// Разная длина сразу означает несовпадение
	if len(candidate) != len(c.plain) ||
		subtle.ConstantTimeCompare([]byte(candidate), []byte(c.plain)) != 1 {
		return errors.New(errors.ErrUnauthorized, "Invalid password")
	}
	return nil
}

// Hash хеширует пароль для ADMIN_PASSWORD_HASH
func Hash(password string, cost int) (string, error) {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
