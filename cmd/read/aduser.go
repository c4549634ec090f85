// cmd/read/aduser.go

package read

import (
	"errors"
	"fmt"

	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/ad"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/config"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_cli"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_err"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_io"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var readADUserCmd = &cobra.Command{
	Use:   "aduser <username>",
	Short: "Show an Active Directory account",
	Long:  `Prints the distinguished name, display name, mail and userAccountControl of <username>.`,
	Args:  gsc_cli.ExactArgs(1),
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

		c, err := connectAD(rc, cfg.AD)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := c.Close(); cerr != nil {
				log.Warn("Failed to close AD connection", zap.Error(cerr))
			}
		}()

		info, err := c.UserInfo(rc, args[0])
		if errors.Is(err, ad.ErrUserNotFound) {
			return gsc_err.NewNotFoundError(fmt.Sprintf("user %s does not exist in Active Directory", args[0]), err)
		}
		if err != nil {
			return err
		}
		return gsc_io.WriteYAML(rc.Ctx, cmd.OutOrStdout(), info)
	}),
}
