// cmd/delete/delete.go
package delete

import (
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/ad"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/gsc_io"
	"github.com/CodeMonkeyCybersecurity/gscadmin/pkg/provision"
	"github.com/spf13/cobra"
)

// DeleteCmd is the root command for delete operations
var DeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete resources (e.g., AD accounts)",
	Long:  `The delete command removes resources such as Active Directory accounts.`,
}

type targetSession interface {
	provision.Target
	Close() error
}

var connectAD = func(rc *gsc_io.RuntimeContext, cfg ad.Config) (targetSession, error) {
	c, err := ad.Connect(rc, cfg)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func init() {
	DeleteCmd.AddCommand(deleteADUserCmd)
}
