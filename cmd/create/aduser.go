// cmd/create/aduser.go
package create

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

var createADUserCmd = &cobra.Command{
	Use:   "aduser <username>",
	Short: "Copy an LDAP account into Active Directory",
	Long: `Looks up <username> in the GSC LDAP directory and creates the matching
Active Directory account, enabled and in the configured container.
Nothing is changed when the account already exists.`,
	Args: gsc_cli.ExactArgs(1),
	RunE: gsc_cli.Wrap(func(rc *gsc_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		log := otelzap.Ctx(rc.Ctx)
		username := args[0]

		cfg, err := config.FromCommand(cmd)
		if err != nil {
			return err
		}
		if err := cfg.Validate(config.SectionLDAP, config.SectionAD, config.SectionProvision); err != nil {
			return err
		}
		if err := cfg.ResolveADPassword(rc, cmd.ErrOrStderr()); err != nil {
			return err
		}
		if err := cfg.ResolveNewUserPassword(rc); err != nil {
			return err
		}

		src, err := connectLDAP(rc, cfg.LDAP)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := src.Close(); cerr != nil {
				log.Warn("Failed to close LDAP session", zap.Error(cerr))
			}
		}()

		dst, err := connectAD(rc, cfg.AD)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := dst.Close(); cerr != nil {
				log.Warn("Failed to close AD connection", zap.Error(cerr))
			}
		}()

		outcome, err := provision.CreateADUser(rc, src, dst, username, cfg.Provision.Defaults, provision.Options{
			DryRun: cli.GetBool(cmd, "dry-run"),
			Out:    cmd.OutOrStdout(),
		})
		rc.Attributes["outcome"] = outcome.String()
		return err
	}),
}

func init() {
	createADUserCmd.Flags().Bool("dry-run", false, "Report what would be created without changing AD")
}
