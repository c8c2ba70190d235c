package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/Carmen-Shannon/burnfade/engine/logger"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last write before reloading.
const DefaultDebounce = 150 * time.Millisecond

// Watcher reloads a config file when it changes on disk and hands every valid result to a
// callback. Invalid files are logged and skipped, so the last good config stays in effect.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(Config)

	fsnotify *fsnotify.Watcher
	done     chan struct{}
	stopped  chan struct{}

	mu       sync.Mutex
	timer    *time.Timer
	isClosed bool
}

// WatcherOption configures a Watcher.
type WatcherOption func(w *Watcher)

// WithDebounce sets the quiet period between the last file event and the reload.
//
// Parameters:
//   - d: the debounce period; non-positive values reload on every event
//
// Returns:
//   - WatcherOption: option function to apply
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = max(d, 0)
	}
}

// NewWatcher starts watching path. The parent directory is watched rather than the file
// itself so that editors that save by renaming a temp file over the original still trigger
// a reload.
//
// Parameters:
//   - path: the config file to watch
//   - onChange: receives every successfully reloaded config
//   - options: functional options
//
// Returns:
//   - *Watcher: the running watcher
//   - error: if the file system watch cannot be set up
func NewWatcher(path string, onChange func(Config), options ...WatcherOption) (*Watcher, error) {
	if onChange == nil {
		return nil, errors.New("config watcher: nil change callback")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("config watcher: watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:     abs,
		debounce: DefaultDebounce,
		onChange: onChange,
		fsnotify: fsw,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	for _, opt := range options {
		opt(w)
	}

	go w.start()
	logger.Debug("watching config", "path", abs)
	return w, nil
}

// Path returns the absolute path of the watched file.
func (w *Watcher) Path() string {
	return w.path
}

func (w *Watcher) start() {
	defer close(w.stopped)
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != w.path {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				w.schedule()
			}

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			logger.Error("config watcher", "err", err)

		case <-w.done:
			return
		}
	}
}

// schedule (re)arms the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isClosed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		logger.Warn("config reload rejected, keeping previous", "err", err)
		return
	}

	w.mu.Lock()
	closed := w.isClosed
	w.mu.Unlock()
	if closed {
		return
	}

	logger.Info("config reloaded", "path", w.path)
	w.onChange(cfg)
}

// Close stops the watcher and any pending reload. Safe to call more than once.
//
// Returns:
//   - error: the error from closing the underlying file system watcher
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.isClosed {
		w.mu.Unlock()
		return nil
	}
	w.isClosed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	close(w.done)
	<-w.stopped
	return w.fsnotify.Close()
}
