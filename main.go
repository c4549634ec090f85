// main.go

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/CodeMonkeyCybersecurity/gscadmin/cmd"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/telemetry"
	"go.uber.org/zap"
)

func main() {
	logger.InitializeWithFallback()

	if err := telemetry.Init(shared.GscID); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Telemetry disabled: %v\n", err)
	}

	code := cmd.Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr)

	if err := telemetry.Shutdown(context.Background()); err != nil {
		logger.L().Debug("Telemetry shutdown failed", zap.Error(err))
	}
	logger.SafeSync()
	os.Exit(code)
}
