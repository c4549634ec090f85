// pkg/testutil/context.go

package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_io"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// NewTestContext creates a RuntimeContext suitable for testing
func NewTestContext(t *testing.T) *gsc_io.RuntimeContext {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return &gsc_io.RuntimeContext{
		Ctx:        ctx,
		Log:        zaptest.NewLogger(t),
		Timestamp:  time.Now(),
		Command:    t.Name(),
		Attributes: make(map[string]string),
	}
}

// NewObservedContext is NewTestContext with the log entries captured for assertions.
func NewObservedContext(t *testing.T) (*gsc_io.RuntimeContext, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	rc := NewTestContext(t)
	rc.Log = zap.New(core)
	return rc, logs
}

// TestError implements error interface for testing purposes
type TestError struct {
	message string
}

func (e *TestError) Error() string {
	return e.message
}

// NewTestError creates a new test error with the given message
func NewTestError(message string) error {
	return &TestError{message: message}
}
