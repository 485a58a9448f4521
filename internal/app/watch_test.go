package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string, at time.Time) {
	t.Helper()
	require.NoError(t, os.Chtimes(path, at, at))
}

func TestWatcher_Changed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.hyref.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	base := time.Now().Add(-time.Hour)
	touch(t, path, base)

	w, err := NewWatcher(path, time.Millisecond)
	require.NoError(t, err)
	assert.False(t, w.Changed())

	touch(t, path, base.Add(time.Minute))
	assert.True(t, w.Changed())
	assert.False(t, w.Changed())
}

func TestWatcher_Missing(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "none"), time.Second)
	assert.Error(t, err)
}

func TestWatcher_RunStopsOnCallbackError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.hyref.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	base := time.Now().Add(-time.Hour)
	touch(t, path, base)

	w, err := NewWatcher(path, time.Millisecond)
	require.NoError(t, err)
	touch(t, path, base.Add(time.Minute))

	boom := errors.New("boom")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.ErrorIs(t, w.Run(ctx, func() error { return boom }), boom)
}

func TestWatcher_RunEndsWithContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.hyref.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	w, err := NewWatcher(path, time.Millisecond)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, w.Run(ctx, func() error { return nil }))
}
