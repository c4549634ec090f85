// pkg/logger/logger.go

package logger

import (
	"fmt"
	"os"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var log *zap.Logger

// L returns the process logger, or zap's global logger before initialization.
func L() *zap.Logger {
	if log == nil {
		return zap.L()
	}
	return log
}

// SetLogger installs l as the process logger for zap and otelzap callers.
func SetLogger(l *zap.Logger) {
	log = l
	zap.ReplaceGlobals(l)
	otelzap.ReplaceGlobals(otelzap.New(l))
}

// InitFallback installs a console-only logger. Used when no log file is wanted.
func InitFallback() {
	SetLogger(NewFallbackLogger())
}

// Sync flushes any buffered log entries. Should be called before the application exits.
func Sync() error {
	if log == nil {
		return nil
	}
	return log.Sync()
}

// SafeSync flushes logs and reports on stderr when that fails.
func SafeSync() {
	if err := Sync(); err != nil && !isIgnorableSyncError(err) {
		fmt.Fprintf(os.Stderr, "⚠️  Failed to flush logs: %v\n", err)
	}
}

func LogErrAndWrap(l *zap.Logger, msg string, err error) error {
	l.Error(msg, zap.Error(err))
	return fmt.Errorf("%s: %w", msg, err)
}
