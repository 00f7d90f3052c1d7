package validation

import (
	"strings"
	"unicode/utf8"

	"StorefrontPlatform/pkg/errors"
)

// Validator собирает проверки пользовательского ввода; каждая неудача
// возвращается как errors.ErrValidation с сообщением для клиента.
type Validator struct{}

// NewValidator создает новый Validator
func NewValidator() *Validator {
	return &Validator{}
}

// Required проверяет, что значение после обрезки пробелов не пустое
func (v *Validator) Required(value, message string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(errors.ErrValidation, message)
	}
	return nil
}

// MinLength проверяет минимальную длину в символах
func (v *Validator) MinLength(value string, min int, message string) error {
	if utf8.RuneCountInString(value) < min {
		return errors.New(errors.ErrValidation, message)
	}
	return nil
}

// Email проверяет минимальный признак адреса: наличие символа @
func (v *Validator) Email(value, message string) error {
	if !strings.Contains(value, "@") {
		return errors.New(errors.ErrValidation, message)
	}
	return nil
}

// First возвращает первую ошибку из списка проверок
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Truncate обрезает строку до max символов (не байт)
func Truncate(value string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(value) <= max {
		return value
	}
	runes := []rune(value)
	return string(runes[:max])
}

// Coalesce возвращает первое непустое значение
func Coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
