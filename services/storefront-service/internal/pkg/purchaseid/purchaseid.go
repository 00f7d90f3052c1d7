// Package purchaseid формирует короткие идентификаторы покупок вида HC-YYMMDD-XXXXXX.
package purchaseid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"
)

const prefix = "HC"

var pattern = regexp.MustCompile(`^HC-\d{6}-[0-9A-F]{6}$`)

// Generator выдает идентификаторы; Random по умолчанию crypto/rand
type Generator struct {
	Random io.Reader
}

// NewGenerator создает генератор на crypto/rand
func NewGenerator() *Generator {
	return &Generator{Random: rand.Reader}
}

// New возвращает идентификатор для даты now (UTC) и трех случайных байт
func (g *Generator) New(now time.Time) (string, error) {
	random := g.Random
	if random == nil {
		random = rand.Reader
	}

	buf := make([]byte, 3)
	if _, err := io.ReadFull(random, buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	return fmt.Sprintf("%s-%s-%s", prefix, now.UTC().Format("060102"), strings.ToUpper(hex.EncodeToString(buf))), nil
}

// Valid проверяет формат идентификатора
func Valid(id string) bool {
	return pattern.MatchString(id)
}
