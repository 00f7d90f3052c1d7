package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"StorefrontPlatform/pkg/errors"
)

func TestChecker_Plain(t *testing.T) {
	c := NewChecker("s3cret!", "")

	assert.NoError(t, c.Check("s3cret!"))

	for _, candidate := range []string{"s3cret", "s3cret!!", "S3cret!", "x", "s3cret?"} {
		err := c.Check(candidate)
		require.Error(t, err, candidate)
		assert.True(t, errors.HasCode(err, errors.ErrUnauthorized))
		assert.Equal(t, "Invalid password", err.Error())
	}

	err := c.Check("")
	assert.True(t, errors.HasCode(err, errors.ErrValidation))
	assert.Equal(t, "Password required", err.Error())
}

func TestChecker_NotConfigured(t *testing.T) {
	c := NewChecker("", "")
	assert.False(t, c.Configured())

	for _, candidate := range []string{"", "anything"} {
		err := c.Check(candidate)
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrUnauthorized))
		assert.Equal(t, "Admin password not set", err.Error())
	}
}

func TestChecker_Hash(t *testing.T) {
	hash, err := Hash("hashed-pass", bcrypt.MinCost)
	require.NoError(t, err)

	c := NewChecker("plain-is-ignored", hash)
	assert.True(t, c.Configured())
	assert.NoError(t, c.Check("hashed-pass"))
	assert.True(t, errors.HasCode(c.Check("plain-is-ignored"), errors.ErrUnauthorized))
	assert.True(t, errors.HasCode(c.Check(""), errors.ErrValidation))

	// Кандидат с лишними байтами после 72-байтового секрета отклоняется
	secret72 := strings.Repeat("a", 72)
	longHash, err := Hash(secret72, bcrypt.MinCost)
	require.NoError(t, err)
	long := NewChecker("", longHash)
	assert.NoError(t, long.Check(secret72))
	assert.True(t, errors.HasCode(long.Check(secret72+"EXTRA"), errors.ErrUnauthorized))
	assert.True(t, errors.HasCode(long.Check(secret72[:71]), errors.ErrUnauthorized))

	// Битый хеш не пропускает никого
	broken := NewChecker("", "not-a-bcrypt-hash")
	assert.True(t, errors.HasCode(broken.Check("anything"), errors.ErrUnauthorized))
}
