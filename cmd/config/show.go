// cmd/config/show.go

package config

import (
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/config"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_cli"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_io"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets masked",
	Args:  cobra.NoArgs,
	RunE: gsc_cli.Wrap(func(rc *gsc_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		cfg, err := config.FromCommand(cmd)
		if err != nil {
			return err
		}
		if cfg.File == "" {
			otelzap.Ctx(rc.Ctx).Info("No config file found", zap.Strings("searched", config.SearchPaths()))
		}
		return gsc_io.WriteYAML(rc.Ctx, cmd.OutOrStdout(), cfg.Redacted())
	}),
}
