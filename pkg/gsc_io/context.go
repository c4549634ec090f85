// pkg/gsc_io/context.go

package gsc_io

import (
	"context"
	"os"
	"os/user"
	"runtime"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_err"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type RuntimeContext struct {
	Ctx        context.Context
	Log        *zap.Logger
	Timestamp  time.Time
	Span       trace.Span
	Command    string
	Attributes map[string]string
}

// NewContext starts the command span and a logger scoped to the command.
func NewContext(parent context.Context, cmdName string) *RuntimeContext {
	ctx, span := telemetry.Start(parent, cmdName)

	traceID := span.SpanContext().TraceID().String()
	if !span.SpanContext().IsValid() {
		traceID = logger.GenerateTraceID()
	}

	log := logger.L().With(
		zap.String("command", cmdName),
		zap.String("trace_id", traceID),
	)

	return &RuntimeContext{
		Ctx:        ctx,
		Span:       span,
		Log:        log,
		Timestamp:  time.Now(),
		Command:    cmdName,
		Attributes: make(map[string]string),
	}
}

// HandlePanic recovers panics, logs them, and converts to an error.
func (rc *RuntimeContext) HandlePanic(errPtr *error) {
	if r := recover(); r != nil {
		*errPtr = cerr.AssertionFailedf("panic: %v", r)
		rc.Log.Error("Panic recovered", zap.Any("panic", r))
	}
}

// End logs outcome, records the span attributes and ends the span.
func (rc *RuntimeContext) End(errPtr *error) {
	if rc.Span != nil {
		defer rc.Span.End()
	}

	var err error
	if errPtr != nil {
		err = *errPtr
	}
	duration := time.Since(rc.Timestamp)

	switch {
	case err == nil:
		rc.Log.Info("Command completed", zap.Duration("duration", duration))
	case gsc_err.IsExpectedUserError(err):
		rc.Log.Warn("Command completed with notice", zap.Duration("duration", duration), zap.Error(err))
	default:
		rc.Log.Error("Command failed",
			zap.Duration("duration", duration),
			zap.String("error_category", gsc_err.CategoryOf(err).String()),
			zap.Error(err))
	}

	if rc.Span == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.Bool("success", err == nil),
		attribute.Int64("duration_ms", duration.Milliseconds()),
		attribute.String("os", runtime.GOOS),
		attribute.String("args", telemetry.TruncateArgs(os.Args[1:])),
		attribute.String("version", shared.Version),
		attribute.Int("exit_code", gsc_err.GetExitCode(err)),
	}
	for k, v := range rc.Attributes {
		attrs = append(attrs, attribute.String(k, v))
	}
	rc.Span.SetAttributes(attrs...)
	if err != nil {
		rc.Span.RecordError(err)
		rc.Span.SetStatus(codes.Error, gsc_err.CategoryOf(err).String())
	}
}

// LogRuntimeExecutionContext records who is running the command and from where.
func LogRuntimeExecutionContext(rc *RuntimeContext) {
	if u, err := user.Current(); err == nil {
		rc.Log.Debug("User context",
			zap.String("username", u.Username),
			zap.String("uid", u.Uid),
			zap.Int("effective_uid", os.Geteuid()),
		)
	}
	if exe, err := os.Executable(); err == nil {
		rc.Log.Debug("Executing binary", zap.String("path", exe))
	}
}

// CommandCategory groups commands for telemetry.
func CommandCategory(name string) string {
	switch {
	case strings.HasPrefix(name, "create"), strings.HasPrefix(name, "delete"):
		return "lifecycle"
	case strings.HasPrefix(name, "serve"), strings.HasPrefix(name, "read"):
		return "diskusage"
	default:
		return "general"
	}
}
