package kv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/salat/internal/config"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, KeyPrayerTimes)
	require.NoError(t, err)
	assert.False(t, ok, "missing key must report ok=false")

	require.NoError(t, s.Set(ctx, KeyPrayerTimes, `{"entries":{}}`))
	v, ok, err := s.Get(ctx, KeyPrayerTimes)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"entries":{}}`, v)

	require.NoError(t, s.Set(ctx, KeyPrayerTimes, `{"entries":{"a":1}}`))
	v, _, err = s.Get(ctx, KeyPrayerTimes)
	require.NoError(t, err)
	assert.Equal(t, `{"entries":{"a":1}}`, v, "Set must overwrite")

	_, ok, err = s.Get(ctx, KeyCompletion)
	require.NoError(t, err)
	assert.False(t, ok, "keys must not bleed into each other")
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemory_FailWrites(t *testing.T) {
	m := NewMemory()
	m.SetFailWrites(true)
	err := m.Set(context.Background(), KeyCompletion, "{}")
	assert.True(t, errors.Is(err, ErrUnavailable), "err = %v", err)
}

func TestFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := NewFile(dir)
	require.NoError(t, err)
	exerciseStore(t, s)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp", "temp files must be renamed away")
	}

	reopened, err := NewFile(dir)
	require.NoError(t, err)
	v, ok, err := reopened.Get(context.Background(), KeyPrayerTimes)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"entries":{"a":1}}`, v, "values must survive a reopen")
}

func TestFile_UnreadableValueIsUnavailable(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(s.path(KeyCompletion), 0o755))

	_, _, err = s.Get(context.Background(), KeyCompletion)
	assert.True(t, errors.Is(err, ErrUnavailable), "err = %v", err)
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "salat.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	exerciseStore(t, s)
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()
	v, ok, err := reopened.Get(context.Background(), KeyPrayerTimes)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"entries":{"a":1}}`, v)
}

func TestSQLite_ClosedIsUnavailable(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "salat.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	err = s.Set(context.Background(), KeyCompletion, "{}")
	assert.True(t, errors.Is(err, ErrUnavailable), "err = %v", err)
}

func TestRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := NewRedis(RedisOptions{Addr: mr.Addr(), Prefix: "salat:"})
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
	raw, err := mr.Get("salat:" + KeyPrayerTimes)
	require.NoError(t, err)
	assert.Equal(t, `{"entries":{"a":1}}`, raw, "keys must carry the prefix")
}

func TestRedis_DownIsUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := NewRedis(RedisOptions{Addr: mr.Addr()})
	require.NoError(t, err)
	defer s.Close()
	mr.Close()

	_, _, err = s.Get(context.Background(), KeyCompletion)
	assert.True(t, errors.Is(err, ErrUnavailable), "err = %v", err)
}

func TestOpen_SelectsBackend(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		cfg  config.Storage
		want any
	}{
		{"file", config.Storage{Backend: "file", Path: dir}, &File{}},
		{"default", config.Storage{Path: dir}, &File{}},
		{"sqlite", config.Storage{Backend: "sqlite", Path: dir}, &SQLite{}},
		{"memory", config.Storage{Backend: "memory"}, &Memory{}},
		{"redis", config.Storage{Backend: "redis", RedisAddr: "127.0.0.1:1"}, &Redis{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(tt.cfg)
			require.NoError(t, err)
			defer s.Close()
			assert.IsType(t, tt.want, s)
		})
	}

	_, err := Open(config.Storage{Backend: "etcd"})
	assert.Error(t, err)
}
