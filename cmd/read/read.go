// cmd/read/read.go

package read

import (
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/ad"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_io"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/ldap"
	"github.com/spf13/cobra"
)

// ReadCmd represents the base read command
var ReadCmd = &cobra.Command{
	Use:   "read",
	Short: "Read resources",
	Long:  `Read information about directory accounts and disk usage archives.`,
}

type ldapReader interface {
	LookupUser(rc *gsc_io.RuntimeContext, username string) (*ldap.DirectoryUser, error)
	Close() error
}

type adReader interface {
	UserInfo(rc *gsc_io.RuntimeContext, username string) (*ad.UserInfo, error)
	Close() error
}

var (
	connectLDAP = func(rc *gsc_io.RuntimeContext, cfg ldap.Config) (ldapReader, error) {
		s, err := ldap.Connect(rc, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	connectAD = func(rc *gsc_io.RuntimeContext, cfg ad.Config) (adReader, error) {
		c, err := ad.Connect(rc, cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
)

// Initialize subcommands for read
func init() {
	ReadCmd.AddCommand(readADUserCmd)
	ReadCmd.AddCommand(readLDAPUserCmd)
	ReadCmd.AddCommand(readDiskUsageCmd)
}
