package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"StorefrontPlatform/pkg/errors"
)

func TestValidator(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Required("p-starter", "Product required"))
	err := v.Required("   ", "Product required")
	assert.True(t, errors.HasCode(err, errors.ErrValidation))
	assert.Equal(t, "Product required", err.Error())

	assert.NoError(t, v.MinLength("ABCDE", 5, "Invalid Transaction ID"))
	assert.Error(t, v.MinLength("ab", 5, "Invalid Transaction ID"))
	// Длина считается в символах
	assert.Error(t, v.MinLength("ক্ষ", 5, "Invalid Transaction ID"))

	assert.NoError(t, v.Email("a@b.com", "Invalid email address"))
	assert.Error(t, v.Email("ab.com", "Invalid email address"))
}

func TestFirst(t *testing.T) {
	v := NewValidator()
	err := First(
		v.Required("x", "first"),
		v.Required("", "second"),
		v.Required("", "third"),
	)
	assert.EqualError(t, err, "second")
	assert.NoError(t, First())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "ab", Truncate("ab", 3))
	assert.Equal(t, "", Truncate("abc", 0))
	assert.Equal(t, "৳১৯", Truncate("৳১৯৯", 3))
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "new", Coalesce("new", "old"))
	assert.Equal(t, "old", Coalesce("", "old"))
	assert.Equal(t, "", Coalesce("", ""))
	// Пробелы не считаются пустым значением
	assert.Equal(t, " ", Coalesce(" ", "old"))
}
