package engine

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

// Logger returns the engine's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	logger.CompareAndSwap(nil, zap.NewNop())
	return logger.Load()
}

// SetLogger installs l as the engine's logger, replacing any previously
// installed one. A nil l is ignored.
func SetLogger(l *zap.Logger) {
	if l == nil {
		return
	}
	logger.Store(l)
}
