package purchaseid

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestGenerator_New(t *testing.T) {
	g := &Generator{Random: bytes.NewReader([]byte{0xab, 0x01, 0xff})}
	// 23:30 UTC-2 это уже следующий день по UTC
	now := time.Date(2026, 2, 28, 23, 30, 0, 0, time.FixedZone("UTC-2", -2*3600))

	id, err := g.New(now)
	require.NoError(t, err)
	assert.Equal(t, "HC-260301-AB01FF", id)
	assert.True(t, Valid(id))
}

func TestGenerator_DefaultRandom(t *testing.T) {
	g := NewGenerator()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id, err := g.New(time.Now())
		require.NoError(t, err)
		assert.True(t, Valid(id), id)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 45)
}

func TestGenerator_RandomFailure(t *testing.T) {
	g := &Generator{Random: failingReader{}}
	_, err := g.New(time.Now())
	assert.ErrorContains(t, err, "entropy exhausted")
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("HC-260101-000000"))
	assert.False(t, Valid("HC-260101-abcdef"))
	assert.False(t, Valid("XX-260101-ABCDEF"))
	assert.False(t, Valid("HC-2601-ABCDEF"))
	assert.False(t, Valid(""))
}
