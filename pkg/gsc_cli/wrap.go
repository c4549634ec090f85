// pkg/gsc_cli/wrap.go

package gsc_cli

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_err"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Wrap ensures panic recovery, telemetry, logging, and argument sanitization.
func Wrap(fn func(rc *gsc_io.RuntimeContext, cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		rc := gsc_io.NewContext(cmd.Context(), cmd.CommandPath())
		defer rc.End(&err)
		defer rc.HandlePanic(&err)

		rc.Attributes["category"] = gsc_io.CommandCategory(strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name()+" "))
		gsc_io.LogRuntimeExecutionContext(rc)

		if serr := SanitizeArgs(args); serr != nil {
			rc.Log.Error("Input sanitization failed",
				zap.Error(serr),
				zap.Int("arg_count", len(args)),
				zap.String("command", cmd.Name()))
			return serr
		}

		err = fn(rc, cmd, args)
		if err != nil && !gsc_err.IsExpectedUserError(err) {
			err = cerr.WithStack(err)
		}
		return err
	}
}

// ExactArgs is cobra.ExactArgs returning a usage error that carries the command's help text.
func ExactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return gsc_err.NewUsageError(UsageText(cmd))
		}
		return nil
	}
}

// UsageText is the long description followed by the usage line.
func UsageText(cmd *cobra.Command) string {
	var sb strings.Builder
	if cmd.Long != "" {
		sb.WriteString("\n")
		sb.WriteString(strings.TrimSpace(cmd.Long))
		sb.WriteString("\n\n")
	}
	sb.WriteString("Usage: ")
	sb.WriteString(cmd.UseLine())
	sb.WriteString("\n")
	return sb.String()
}

// SanitizeArgs rejects arguments carrying NUL or other control characters.
func SanitizeArgs(args []string) error {
	for i, arg := range args {
		for _, r := range arg {
			if r == 0 || unicode.IsControl(r) {
				return gsc_err.NewValidationError(
					fmt.Sprintf("argument %d contains control characters", i+1),
					"Pass the plain account name, e.g. jdoe")
			}
		}
	}
	return nil
}
