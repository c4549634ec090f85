// cmd/read/ldapuser.go

package read

import (
	"errors"
	"fmt"

	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/config"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_cli"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_err"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_io"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/ldap"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var readLDAPUserCmd = &cobra.Command{
	Use:     "ldapuser <username>",
	Aliases: []string{"directory"},
	Short:   "Show the LDAP record an AD account would be built from",
	Long:    `Looks up <username> (uid) in the GSC LDAP directory and prints its name and mail.`,
	Args:    gsc_cli.ExactArgs(1),
	RunE: gsc_cli.Wrap(func(rc *gsc_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		log := otelzap.Ctx(rc.Ctx)

		cfg, err := config.FromCommand(cmd)
		if err != nil {
			return err
		}
		if err := cfg.Validate(config.SectionLDAP); err != nil {
			return err
		}

		s, err := connectLDAP(rc, cfg.LDAP)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := s.Close(); cerr != nil {
				log.Warn("Failed to close LDAP session", zap.Error(cerr))
			}
		}()

		user, err := s.LookupUser(rc, args[0])
		if errors.Is(err, ldap.ErrUserNotFound) {
			return gsc_err.NewNotFoundError(fmt.Sprintf("user %s was not found in LDAP", args[0]), err)
		}
		if err != nil {
			return err
		}
		return gsc_io.WriteYAML(rc.Ctx, cmd.OutOrStdout(), user)
	}),
}
