package log

import "sync"

var (
	globalMu sync.RWMutex
	global   *Logger
)

// SetDefaultLogger installs the logger built during command setup as
// the process-wide default.
func SetDefaultLogger(l *Logger) {
	globalMu.Lock()
	global = l
	globalMu.Unlock()
}

// DefaultLogger returns the process-wide logger. Before command setup
// has installed one it builds and installs the stock configuration, so
// early callers never get nil.
func DefaultLogger() *Logger {
	globalMu.RLock()
	l := global
	globalMu.RUnlock()
	if l != nil {
		return l
	}

	l = Default()
	SetDefaultLogger(l)
	return l
}
