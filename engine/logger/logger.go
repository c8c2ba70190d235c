// Package logger provides the process-wide structured logger used by the engine,
// the renderer backend, the config watcher and the commands.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	once      sync.Once
	singleton *log.Logger
)

func get() *log.Logger {
	once.Do(func() {
		singleton = log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          "burnfade 🔥",
		})
		singleton.SetLevel(log.InfoLevel)
	})
	return singleton
}

// Logger returns the shared logger instance.
//
// Returns:
//   - *log.Logger: the process-wide logger
func Logger() *log.Logger {
	return get()
}

// SetLevel sets the minimum level emitted by the shared logger.
//
// Parameters:
//   - level: one of "debug", "info", "warn", "error", "fatal"
//
// Returns:
//   - error: an error if the level name is not recognized
func SetLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	get().SetLevel(lvl)
	return nil
}

// SetOutput redirects the shared logger to w.
//
// Parameters:
//   - w: the destination writer
func SetOutput(w io.Writer) {
	get().SetOutput(w)
}

// With returns a sub-logger that attaches the given key/value pairs to every entry.
//
// Parameters:
//   - keyvals: alternating keys and values
//
// Returns:
//   - *log.Logger: the derived logger
func With(keyvals ...any) *log.Logger {
	return get().With(keyvals...)
}

func Debug(msg string, keyvals ...any) {
	get().Helper()
	get().Debug(msg, keyvals...)
}

func Info(msg string, keyvals ...any) {
	get().Helper()
	get().Info(msg, keyvals...)
}

func Warn(msg string, keyvals ...any) {
	get().Helper()
	get().Warn(msg, keyvals...)
}

func Error(msg string, keyvals ...any) {
	get().Helper()
	get().Error(msg, keyvals...)
}

// Fatal logs at fatal level and exits the process.
func Fatal(msg string, keyvals ...any) {
	get().Helper()
	get().Fatal(msg, keyvals...)
}
