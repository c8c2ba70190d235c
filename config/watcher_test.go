package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func newTestWatcher(t *testing.T) (string, <-chan Config, *Watcher) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "burnfade.toml")
	writeConfig(t, path, "[burn]\nburn_amount = 0.0\n")

	changes := make(chan Config, 8)
	w, err := NewWatcher(path, func(c Config) { changes <- c }, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return path, changes, w
}

func waitForConfig(t *testing.T, changes <-chan Config) Config {
	t.Helper()
	select {
	case c := <-changes:
		return c
	case <-time.After(3 * time.Second):
		t.Fatal("no config reload delivered")
		return Config{}
	}
}

func TestWatcherDeliversReload(t *testing.T) {
	path, changes, w := newTestWatcher(t)
	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	assert.Equal(t, abs, w.Path())

	writeConfig(t, path, "[burn]\nburn_amount = 0.25\n")
	cfg := waitForConfig(t, changes)
	assert.Equal(t, float32(0.25), cfg.Burn.BurnAmount)
}

func TestWatcherSkipsInvalidFiles(t *testing.T) {
	path, changes, _ := newTestWatcher(t)

	writeConfig(t, path, "[burn]\nedge_width = -1.0\n")
	select {
	case c := <-changes:
		t.Fatalf("invalid config delivered: %+v", c)
	case <-time.After(200 * time.Millisecond):
	}

	writeConfig(t, path, "[burn]\nedge_width = 0.02\n")
	cfg := waitForConfig(t, changes)
	assert.Equal(t, float32(0.02), cfg.Burn.EdgeWidth)
}

func TestWatcherIgnoresSiblingFiles(t *testing.T) {
	path, changes, _ := newTestWatcher(t)

	writeConfig(t, filepath.Join(filepath.Dir(path), "other.toml"), "[burn]\nburn_amount = 0.9\n")
	select {
	case c := <-changes:
		t.Fatalf("sibling file triggered reload: %+v", c)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherDebouncesBursts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "burnfade.toml")
	writeConfig(t, path, "[burn]\nburn_amount = 0.0\n")

	changes := make(chan Config, 8)
	w, err := NewWatcher(path, func(c Config) { changes <- c }, WithDebounce(250*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	for _, v := range []string{"0.1", "0.2", "0.3"} {
		writeConfig(t, path, "[burn]\nburn_amount = "+v+"\n")
		time.Sleep(10 * time.Millisecond)
	}

	cfg := waitForConfig(t, changes)
	assert.Equal(t, float32(0.3), cfg.Burn.BurnAmount)
	select {
	case c := <-changes:
		t.Fatalf("burst produced a second reload: %+v", c)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "burnfade.toml")
	writeConfig(t, path, "")

	w, err := NewWatcher(path, func(Config) {})
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func TestNewWatcherErrors(t *testing.T) {
	_, err := NewWatcher("burnfade.toml", nil)
	assert.Error(t, err)

	_, err = NewWatcher(filepath.Join(t.TempDir(), "missing", "burnfade.toml"), func(Config) {})
	assert.Error(t, err)
}
