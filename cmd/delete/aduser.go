// cmd/delete/aduser.go
package delete

import (
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/config"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_cli"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_io"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/provision"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var deleteADUserCmd = &cobra.Command{
	Use:   "aduser <username>",
	Short: "Remove an account from Active Directory",
	Long: `Deletes the Active Directory account whose sAMAccountName is <username>.
Nothing is changed when the account does not exist.`,
	Args: gsc_cli.ExactArgs(1),
	RunE: gsc_cli.Wrap(func(rc *gsc_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		log := otelzap.Ctx(rc.Ctx)

		cfg, err := config.FromCommand(cmd)
		if err != nil {
			return err
		}
		if err := cfg.Validate(config.SectionAD); err != nil {
			return err
		}
		if err := cfg.ResolveADPassword(rc, cmd.ErrOrStderr()); err != nil {
			return err
		}

		dst, err := connectAD(rc, cfg.AD)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := dst.Close(); cerr != nil {
				log.Warn("Failed to close AD connection", zap.Error(cerr))
			}
		}()

		outcome, err := provision.DeleteADUser(rc, dst, args[0], provision.Options{
			DryRun: cli.GetBool(cmd, "dry-run"),
			Out:    cmd.OutOrStdout(),
		})
		rc.Attributes["outcome"] = outcome.String()
		return err
	}),
}

func init() {
	deleteADUserCmd.Flags().Bool("dry-run", false, "Report what would be deleted without changing AD")
}
