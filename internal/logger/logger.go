// Package logger provides the process-wide structured logger. Components get
// their own child logger so rejection reasons and fallback decisions can be
// traced per pipeline stage.
package logger

import (
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	mu            sync.RWMutex
	defaultLogger = newBase()
)

func newBase() *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})
	l.SetLevel(levelFromEnv())
	return l
}

func levelFromEnv() log.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Default returns the process-wide logger.
func Default() *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the process-wide logger. Intended for tests.
func SetDefault(l *log.Logger) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = l
}

// WithComponent returns a child logger tagged with the component name.
func WithComponent(component string) *log.Logger {
	return Default().With("component", component)
}
