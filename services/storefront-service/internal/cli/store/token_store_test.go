package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenStore_SaveLoadClear(t *testing.T) {
	ts, err := NewTokenStoreAt(filepath.Join(t.TempDir(), ".storectl"))
	require.NoError(t, err)

	_, err = ts.Load()
	assert.ErrorIs(t, err, ErrNoToken)

	expires := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, ts.Save(&TokenInfo{Token: "abc.def", Server: "http://localhost:8080", ExpiresAt: expires}))

	stat, err := os.Stat(ts.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), stat.Mode().Perm())

	info, err := ts.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc.def", info.Token)
	assert.Equal(t, "http://localhost:8080", info.Server)
	assert.True(t, info.ExpiresAt.Equal(expires))

	require.NoError(t, ts.Clear())
	require.NoError(t, ts.Clear())
	_, err = ts.Load()
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestTokenStore_HomeFromEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("STORECTL_HOME", home)

	ts, err := NewTokenStore()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".storectl", "token"), ts.Path())
}

func TestTokenInfo_Expired(t *testing.T) {
	now := time.Now()
	assert.False(t, (&TokenInfo{}).Expired(now))
	assert.False(t, (&TokenInfo{ExpiresAt: now.Add(time.Minute)}).Expired(now))
	assert.True(t, (&TokenInfo{ExpiresAt: now}).Expired(now))
}

func TestTokenStore_CorruptFile(t *testing.T) {
	ts, err := NewTokenStoreAt(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(ts.Path(), []byte("{broken"), 0600))

	_, err = ts.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse token file")
}
