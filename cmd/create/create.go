// cmd/create/create.go
package create

import (
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/ad"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_io"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/ldap"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/provision"
	"github.com/spf13/cobra"
)

// CreateCmd is the root command for create operations
var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create resources (e.g., AD accounts)",
	Long:  `The create command provisions resources such as Active Directory accounts from the GSC directory.`,
}

type sourceSession interface {
	provision.Source
	Close() error
}

type targetSession interface {
	provision.Target
	Close() error
}

var (
	connectLDAP = func(rc *gsc_io.RuntimeContext, cfg ldap.Config) (sourceSession, error) {
		s, err := ldap.Connect(rc, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	connectAD = func(rc *gsc_io.RuntimeContext, cfg ad.Config) (targetSession, error) {
		c, err := ad.Connect(rc, cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
)

// init registers subcommands for the create command
func init() {
	CreateCmd.AddCommand(createADUserCmd)
}
