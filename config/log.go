// ABOUTME: Shared structured logger for server, sync, and CLI code
// ABOUTME: Wraps charmbracelet/log with a configurable level
package config

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	loggerMu sync.RWMutex
	logger   = newLogger(os.Stderr, log.InfoLevel)
)

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          AppName,
		ReportTimestamp: true,
		Level:           level,
	})
}

// Logger returns the process logger.
func Logger() *log.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// SetupLogger replaces the process logger. Unknown levels fall back to info.
func SetupLogger(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}

	l := newLogger(w, lvl)
	loggerMu.Lock()
	logger = l
	loggerMu.Unlock()
	return l
}
